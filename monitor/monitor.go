// This file is part of citrine3ds.
//
// citrine3ds is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// citrine3ds is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with citrine3ds.  If not, see <https://www.gnu.org/licenses/>.

// Package monitor is an interactive terminal debugger for the
// runtime package: step/continue execution, inspect registers and
// guest memory, set breakpoints on a PC value, and dump a debug
// snapshot to disk.
package monitor

import (
	"errors"
	"os"
	"unicode"
	"unicode/utf8"

	"github.com/citrine3ds/citrine3ds/assert"
	"github.com/citrine3ds/citrine3ds/debugger/terminal/colorterm/easyterm"
	"github.com/citrine3ds/citrine3ds/debugger/terminal/colorterm/easyterm/ansi"
	"github.com/citrine3ds/citrine3ds/runtime"
)

const prompt = "citrine3ds> "

// errInterrupted signals Ctrl-C on an empty input line, which quits
// the monitor rather than just clearing the line.
var errInterrupted = errors.New("interrupted")

// Monitor is a raw-mode command-line REPL driving a runtime.Emulator.
type Monitor struct {
	easyterm.EasyTerm

	Emu *runtime.Emulator

	breakpoints map[uint32]bool
	history     [][]byte
	reader      runeReader

	// goroutineID records which goroutine called Initialise, since
	// RawMode/CanonicalMode toggle process-wide terminal state and
	// Run must never be driven from more than one goroutine at once.
	goroutineID uint64
}

// New returns a Monitor bound to emu. Initialise must be called
// before Run.
func New(emu *runtime.Emulator) *Monitor {
	return &Monitor{
		Emu:         emu,
		breakpoints: make(map[uint32]bool),
	}
}

// Initialise puts the controlling terminal under the monitor's
// control: raw-mode input, SIGWINCH-tracked geometry.
func (m *Monitor) Initialise() error {
	if err := m.EasyTerm.Initialise(os.Stdin, os.Stdout); err != nil {
		return err
	}
	m.reader = initRuneReader(os.Stdin)
	m.goroutineID = assert.GetGoRoutineID()
	return nil
}

// CleanUp restores canonical terminal mode and releases the signal
// handler goroutine started by Initialise.
func (m *Monitor) CleanUp() {
	m.EasyTerm.TermPrint("\r")
	_ = m.Flush()
	m.EasyTerm.CleanUp()
}

// Run reads commands until the user quits or the input reader fails.
// Must be called from the same goroutine that called Initialise.
func (m *Monitor) Run() error {
	if assert.GetGoRoutineID() != m.goroutineID {
		return errors.New("monitor: Run called from a different goroutine than Initialise")
	}

	m.printLine(styleInfo, "citrine3ds monitor, type 'help' for commands")

	buf := make([]byte, 256)
	for {
		n, err := m.readLine(buf, prompt)
		if err == errInterrupted {
			m.printLine(styleInfo, "interrupted")
			return nil
		}
		if err != nil {
			return err
		}

		line := string(buf[:n])
		output, style, quit := m.execute(line)
		if output != "" {
			m.printLine(style, output)
		}
		if quit {
			return nil
		}
	}
}

// readLine runs a small raw-mode line editor: printable runes insert
// at the cursor, backspace deletes behind it, up/down recall history,
// left/right move within the line, and enter submits. It mirrors the
// approach of an ordinary readline-style debugger front end, trimmed
// to what this monitor needs (no tab completion).
func (m *Monitor) readLine(input []byte, prompt string) (int, error) {
	if err := m.RawMode(); err != nil {
		return 0, err
	}
	defer m.CanonicalMode()

	inputLen := 0
	cursorPos := 0
	historyIdx := len(m.history)
	er := make([]byte, 4)

	redraw := func() {
		m.EasyTerm.TermPrint(ansi.CursorStore)
		m.EasyTerm.TermPrint(ansi.ClearLine)
		m.EasyTerm.TermPrint("\r")
		m.EasyTerm.TermPrint(ansi.PenStyles["bold"])
		m.EasyTerm.TermPrint(prompt)
		m.EasyTerm.TermPrint(ansi.NormalPen)
		m.EasyTerm.TermPrint(string(input[:inputLen]))
		m.EasyTerm.TermPrint(ansi.CursorMove(cursorPos - inputLen))
	}

	for {
		redraw()

		rr := <-m.reader
		if rr.err != nil {
			return inputLen, rr.err
		}

		switch rr.r {
		case easyterm.KeyInterrupt:
			if inputLen > 0 {
				inputLen = 0
				cursorPos = 0
			} else {
				m.EasyTerm.TermPrint("\r\n")
				return 0, errInterrupted
			}

		case easyterm.KeySuspend:
			_ = m.CanonicalMode()
			easyterm.SuspendProcess()
			_ = m.RawMode()

		case easyterm.KeyCarriageReturn:
			if inputLen > 0 {
				entry := make([]byte, inputLen)
				copy(entry, input[:inputLen])
				m.history = append(m.history, entry)
			}
			m.EasyTerm.TermPrint("\r\n")
			return inputLen, nil

		case easyterm.KeyEsc:
			rr = <-m.reader
			if rr.err != nil {
				return inputLen, rr.err
			}
			if rr.r != easyterm.EscCursor {
				continue
			}
			rr = <-m.reader
			if rr.err != nil {
				return inputLen, rr.err
			}
			switch rr.r {
			case easyterm.CursorUp:
				if len(m.history) > 0 && historyIdx > 0 {
					historyIdx--
					l := len(m.history[historyIdx])
					if l <= len(input) {
						copy(input, m.history[historyIdx])
						inputLen = l
						cursorPos = l
					}
				}
			case easyterm.CursorDown:
				if historyIdx < len(m.history)-1 {
					historyIdx++
					l := len(m.history[historyIdx])
					if l <= len(input) {
						copy(input, m.history[historyIdx])
						inputLen = l
						cursorPos = l
					}
				} else if historyIdx < len(m.history) {
					historyIdx = len(m.history)
					inputLen = 0
					cursorPos = 0
				}
			case easyterm.CursorForward:
				if cursorPos < inputLen {
					cursorPos++
				}
			case easyterm.CursorBackward:
				if cursorPos > 0 {
					cursorPos--
				}
			}

		case easyterm.KeyCtrlH, easyterm.KeyBackspace:
			if cursorPos > 0 {
				copy(input[cursorPos-1:], input[cursorPos:inputLen])
				cursorPos--
				inputLen--
			}

		default:
			if isLineRune(rr.r) {
				n := utf8.EncodeRune(er, rr.r)
				if cursorPos+n <= len(input) {
					copy(input[cursorPos+n:], input[cursorPos:inputLen])
					copy(input[cursorPos:], er[:n])
					cursorPos += n
					inputLen += n
				}
			}
		}
	}
}

func isLineRune(r rune) bool {
	return unicode.IsDigit(r) || unicode.IsLetter(r) || unicode.IsSpace(r) ||
		unicode.IsPunct(r) || unicode.IsSymbol(r)
}
