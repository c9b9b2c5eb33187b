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

package runtime

import (
	"fmt"
	"strings"

	"github.com/citrine3ds/citrine3ds/cpu"
	"github.com/citrine3ds/citrine3ds/emulation"
)

var modeNames = map[uint32]string{
	cpu.ModeUser: "USR",
	cpu.ModeFIQ:  "FIQ",
	cpu.ModeIRQ:  "IRQ",
	cpu.ModeSVC:  "SVC",
	cpu.ModeABT:  "ABT",
	cpu.ModeUND:  "UND",
	cpu.ModeSYS:  "SYS",
}

func modeName(mode uint32) string {
	if name, ok := modeNames[mode]; ok {
		return name
	}
	return "???"
}

var stateNames = map[emulation.State]string{
	emulation.Initialising: "initialising",
	emulation.Running:      "running",
	emulation.Paused:       "paused",
	emulation.Stepping:     "stepping",
	emulation.Rewinding:    "rewinding",
	emulation.Ending:       "ending",
}

func stateName(s emulation.State) string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "???"
}

var svcNames = map[uint32]string{
	0x01: "CtrlMem",
	0x02: "QueryMem",
	0x03: "ExitProc",
	0x08: "CreateThr",
	0x09: "ExitThr",
	0x0A: "Sleep",
	0x0B: "GetPrio",
	0x0C: "SetPrio",
	0x13: "CreateMtx",
	0x14: "RelMtx",
	0x17: "CreateEvt",
	0x18: "SigEvt",
	0x19: "ClrEvt",
	0x1E: "CreateTmr",
	0x21: "CreateShmem",
	0x22: "MapShmem",
	0x23: "CloseH",
	0x24: "WaitSync1",
	0x25: "WaitSyncN",
	0x27: "DupH",
	0x28: "GetTick",
	0x2D: "ConnPort",
	0x32: "SendSync",
	0x35: "GetPID",
	0x37: "GetTID",
	0x38: "GetResLim",
	0x3C: "DbgStr",
	0x3D: "Break",
}

func svcName(num uint32) string {
	if name, ok := svcNames[num]; ok {
		return name
	}
	return "?"
}

// DebugInfo renders a multi-section snapshot of emulator state for
// the interactive monitor: registers, the active framebuffer and
// heap, the last failed port connection, and the logged IPC/SVC/
// instruction history.
func (e *Emulator) DebugInfo() string {
	c := e.CPU
	var b strings.Builder

	t := "A"
	if c.InThumbMode() {
		t = "T"
	}
	fmt.Fprintf(&b, "PC=%08X SP=%08X LR=%08X CPSR=%08X\n", c.Regs[15], c.Regs[13], c.Regs[14], c.CPSR)
	fmt.Fprintf(&b, "mode=%s %s cyc=%d thr=%d state=%s\n", modeName(c.Mode()), t, c.Cycles, e.Kernel.CurrentThreadID(), stateName(e.state))

	for i := 0; i < 13; i += 4 {
		for j := i; j < i+4 && j < 13; j++ {
			fmt.Fprintf(&b, "R%-2d=%08X ", j, c.Regs[j])
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	top := e.GetFBTop()
	pixels := 0
	for _, v := range top {
		if v != 0 {
			pixels++
		}
	}
	fmt.Fprintf(&b, "FB top=%08X bot=%08X pixels=%d\n", e.Services.TopFBAddr, e.Services.BotFBAddr, pixels)
	fmt.Fprintf(&b, "heap=%08X\n", e.Mem.HeapEnd())

	if e.lastFailedPort != "" {
		fmt.Fprintf(&b, "PortFail: %s\n", e.lastFailedPort)
	}

	if len(e.ipcLog) > 0 {
		b.WriteString("IPC:\n")
		for _, entry := range e.ipcLog {
			fmt.Fprintf(&b, "  %s:%04X\n", entry.service, entry.commandID)
		}
	}

	if len(e.svcLog) > 0 {
		b.WriteString("SVCs:\n")
		for _, entry := range e.svcLog {
			if entry.outR0 == 0 {
				fmt.Fprintf(&b, "  %02X %s in=%08X => OK\n", entry.num, svcName(entry.num), entry.inR0)
			} else {
				fmt.Fprintf(&b, "  %02X %s in=%08X => %08X\n", entry.num, svcName(entry.num), entry.inR0, entry.outR0)
			}
		}
	}

	if len(e.traceLog) > 0 {
		b.WriteString("Trace:\n")
		for _, entry := range e.traceLog {
			if entry.thumb {
				fmt.Fprintf(&b, "  T %08X: %04X\n", entry.pc, entry.instr)
			} else {
				fmt.Fprintf(&b, "  A %08X: %08X\n", entry.pc, entry.instr)
			}
		}
	}

	return b.String()
}
