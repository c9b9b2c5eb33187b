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

import "github.com/citrine3ds/citrine3ds/debugger/terminal/colorterm/easyterm/ansi"

type outputStyle int

const (
	styleInfo outputStyle = iota
	styleStep
	styleBreak
	styleError
	styleHelp
)

// printLine writes one styled, newline-terminated line to the
// terminal. Multi-line output (register dumps, memory hex) is split
// and printed line by line so the carriage-return-first convention
// holds for every row.
func (m *Monitor) printLine(style outputStyle, s string) {
	for _, line := range splitLines(s) {
		m.EasyTerm.TermPrint("\r")

		switch style {
		case styleInfo:
			m.EasyTerm.TermPrint(ansi.DimPens["white"])
		case styleStep:
			m.EasyTerm.TermPrint(ansi.Pens["cyan"])
		case styleBreak:
			m.EasyTerm.TermPrint(ansi.Pens["yellow"])
		case styleError:
			m.EasyTerm.TermPrint(ansi.Pens["red"])
		case styleHelp:
			m.EasyTerm.TermPrint(ansi.DimPens["white"])
		}

		m.EasyTerm.TermPrint(line)
		m.EasyTerm.TermPrint(ansi.NormalPen)
		m.EasyTerm.TermPrint("\n")
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}
