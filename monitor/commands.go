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

package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/citrine3ds/citrine3ds/errors"
	"github.com/citrine3ds/citrine3ds/paths"
)

// cmdErrorf formats a monitor-command error through the curated
// errors.MonitorCommand message and returns its text for display; the
// curated error value itself is not returned.
func cmdErrorf(detail string, values ...interface{}) string {
	return errors.Errorf(errors.MonitorCommand, errors.Errorf(detail, values...)).Error()
}

const helpText = `step [n]       execute n instructions (default 1)
continue       run until a breakpoint or halt
regs           print registers, mode, and recent SVC/IPC/trace logs
mem <addr> [n] hex-dump n bytes of guest memory starting at addr (default 16)
break <addr>   set a breakpoint at a PC value
clear <addr>   remove a breakpoint
breakpoints    list active breakpoints
snapshot [name] write the current debug info to a file under ` + "`.citrine3ds/snapshots`" + `
quit           leave the monitor`

// execute parses one command line and runs it against the bound
// emulator, returning the text to print and whether the session
// should end. An empty line is a no-op.
func (m *Monitor) execute(line string) (output string, style outputStyle, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", styleInfo, false
	}

	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "step", "s":
		return m.cmdStep(args)
	case "continue", "c":
		return m.cmdContinue()
	case "regs", "r", "info":
		return m.Emu.DebugInfo(), styleInfo, false
	case "mem", "m":
		return m.cmdMem(args)
	case "break", "b":
		return m.cmdBreak(args)
	case "clear":
		return m.cmdClear(args)
	case "breakpoints", "bp":
		return m.cmdListBreakpoints(), styleInfo, false
	case "snapshot", "snap":
		return m.cmdSnapshot(args)
	case "help", "?":
		return helpText, styleHelp, false
	case "quit", "q", "exit":
		return "goodbye", styleInfo, true
	default:
		return cmdErrorf("unknown command %q, try 'help'", cmd), styleError, false
	}
}

func (m *Monitor) cmdStep(args []string) (string, outputStyle, bool) {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return cmdErrorf("bad step count %q", args[0]), styleError, false
		}
		n = v
	}

	for i := 0; i < n; i++ {
		if !m.Emu.Running {
			return fmt.Sprintf("halted after %d step(s), pc=%#08x", i, m.Emu.CPU.PC()), styleStep, false
		}
		m.Emu.Step()
		if m.breakpoints[m.Emu.CPU.PC()] {
			return fmt.Sprintf("breakpoint hit at %#08x after %d step(s)", m.Emu.CPU.PC(), i+1), styleBreak, false
		}
	}
	return fmt.Sprintf("pc=%#08x cyc=%d", m.Emu.CPU.PC(), m.Emu.CPU.Cycles), styleStep, false
}

// cmdContinue steps until a breakpoint is hit or the emulator stops
// running. It has no iteration cap: a program with no breakpoints
// that never halts runs forever, same as a real debugger's continue.
func (m *Monitor) cmdContinue() (string, outputStyle, bool) {
	for m.Emu.Running {
		m.Emu.Step()
		if m.breakpoints[m.Emu.CPU.PC()] {
			return fmt.Sprintf("breakpoint hit at %#08x", m.Emu.CPU.PC()), styleBreak, false
		}
	}
	return fmt.Sprintf("halted, pc=%#08x", m.Emu.CPU.PC()), styleStep, false
}

func (m *Monitor) cmdMem(args []string) (string, outputStyle, bool) {
	if len(args) == 0 {
		return cmdErrorf("usage: mem <addr> [length]"), styleError, false
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return cmdErrorf("bad address %q", args[0]), styleError, false
	}
	length := uint32(16)
	if len(args) > 1 {
		v, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			return cmdErrorf("bad length %q", args[1]), styleError, false
		}
		length = uint32(v)
	}

	data := m.Emu.Mem.ReadBlock(uint32(addr), length)
	return hexDump(uint32(addr), data), styleInfo, false
}

func hexDump(base uint32, data []byte) string {
	var b strings.Builder
	for row := 0; row < len(data); row += 16 {
		end := row + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&b, "%08X  ", base+uint32(row))
		for i := row; i < end; i++ {
			fmt.Fprintf(&b, "%02X ", data[i])
		}
		for i := end; i < row+16; i++ {
			b.WriteString("   ")
		}
		b.WriteString(" ")
		for i := row; i < end; i++ {
			if data[i] >= 0x20 && data[i] < 0x7F {
				b.WriteByte(data[i])
			} else {
				b.WriteByte('.')
			}
		}
		if end < len(data) {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Monitor) cmdBreak(args []string) (string, outputStyle, bool) {
	if len(args) != 1 {
		return cmdErrorf("usage: break <addr>"), styleError, false
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return cmdErrorf("bad address %q", args[0]), styleError, false
	}
	m.breakpoints[uint32(addr)] = true
	return fmt.Sprintf("breakpoint set at %#08x", addr), styleInfo, false
}

func (m *Monitor) cmdClear(args []string) (string, outputStyle, bool) {
	if len(args) != 1 {
		return cmdErrorf("usage: clear <addr>"), styleError, false
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return cmdErrorf("bad address %q", args[0]), styleError, false
	}
	delete(m.breakpoints, uint32(addr))
	return fmt.Sprintf("breakpoint cleared at %#08x", addr), styleInfo, false
}

func (m *Monitor) cmdListBreakpoints() string {
	if len(m.breakpoints) == 0 {
		return "no breakpoints set"
	}
	var b strings.Builder
	for addr := range m.breakpoints {
		fmt.Fprintf(&b, "%#08x\n", addr)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Monitor) cmdSnapshot(args []string) (string, outputStyle, bool) {
	name := fmt.Sprintf("snapshot-%d.txt", time.Now().UnixNano())
	if len(args) > 0 {
		name = args[0]
	}

	dir, err := paths.ResourcePath("snapshots")
	if err != nil {
		return cmdErrorf("could not resolve snapshot directory: %v", err), styleError, false
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cmdErrorf("could not create snapshot directory: %v", err), styleError, false
	}

	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, []byte(m.Emu.DebugInfo()), 0o644); err != nil {
		return cmdErrorf("could not write snapshot: %v", err), styleError, false
	}
	return fmt.Sprintf("wrote %s", full), styleInfo, false
}
