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
	"os"
	"strings"
	"testing"

	"github.com/citrine3ds/citrine3ds/assert"
	"github.com/citrine3ds/citrine3ds/memory"
	"github.com/citrine3ds/citrine3ds/paths"
	"github.com/citrine3ds/citrine3ds/runtime"
)

func putU16LE(out []byte, v uint16) []byte {
	return append(out, byte(v), byte(v>>8))
}

func putU32LE(out []byte, v uint32) []byte {
	return append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// make3DSX builds a minimal loadable image: code only, no relocations.
func make3DSX(code []byte) []byte {
	var out []byte
	out = append(out, 0x33, 0x44, 0x53, 0x58)
	out = putU16LE(out, 32)
	out = putU16LE(out, 8)
	out = putU32LE(out, 0)
	out = putU32LE(out, 0)
	out = putU32LE(out, uint32(len(code)))
	out = putU32LE(out, 0)
	out = putU32LE(out, 0)
	out = putU32LE(out, 0)
	for i := 0; i < 3; i++ {
		out = putU32LE(out, 0)
		out = putU32LE(out, 0)
	}
	out = append(out, code...)
	return out
}

func newTestMonitor(t *testing.T, code []byte) *Monitor {
	t.Helper()
	e := runtime.New()
	if !e.Load3DSX(make3DSX(code)) {
		t.Fatal("expected 3DSX to load")
	}
	return New(e)
}

func TestStepAdvancesPC(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00}) // word 0x000000EA: a harmless EQ-conditional AND
	startPC := m.Emu.CPU.PC()

	out, style, quit := m.execute("step")

	if quit {
		t.Fatal("expected step to not quit the monitor")
	}
	if style != styleStep {
		t.Fatalf("expected styleStep, got %v", style)
	}
	if !strings.Contains(out, "pc=") {
		t.Fatalf("expected step output to report pc, got %q", out)
	}
	if m.Emu.CPU.PC() == startPC && m.Emu.CPU.Cycles == 0 {
		t.Fatal("expected step to advance the emulator")
	}
}

func TestStepRejectsBadCount(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00})

	_, style, _ := m.execute("step abc")

	if style != styleError {
		t.Fatalf("expected styleError for a bad count, got %v", style)
	}
}

func TestBreakpointStopsStepping(t *testing.T) {
	m := newTestMonitor(t, []byte{0xFE, 0xFF, 0xFF, 0xEA}) // B #-8, branch to self
	m.execute("break 0x00100000")

	out, style, _ := m.execute("step 5")

	if style != styleBreak {
		t.Fatalf("expected styleBreak, got %v", style)
	}
	if !strings.Contains(out, "breakpoint hit") {
		t.Fatalf("expected breakpoint message, got %q", out)
	}
}

func TestClearRemovesBreakpoint(t *testing.T) {
	m := newTestMonitor(t, []byte{0xFE, 0xFF, 0xFF, 0xEA})
	m.execute("break 0x00100000")
	m.execute("clear 0x00100000")

	out, style, _ := m.execute("step 2")

	if style == styleBreak {
		t.Fatalf("expected the cleared breakpoint to not fire, got %q", out)
	}
}

func TestListBreakpointsReportsNone(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00})

	out, _, _ := m.execute("breakpoints")

	if out != "no breakpoints set" {
		t.Fatalf("expected no breakpoints message, got %q", out)
	}
}

func TestMemReportsHexDump(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00})

	out, style, _ := m.execute("mem 0x00100000 4")

	if style != styleInfo {
		t.Fatalf("expected styleInfo, got %v", style)
	}
	if !strings.Contains(out, "EA 00 00 00") {
		t.Fatalf("expected hex dump of the loaded instruction bytes, got %q", out)
	}
}

func TestMemRejectsMissingAddress(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00})

	_, style, _ := m.execute("mem")

	if style != styleError {
		t.Fatalf("expected styleError, got %v", style)
	}
}

func TestRegsReportsDebugInfo(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00})

	out, _, _ := m.execute("regs")

	if !strings.Contains(out, "PC=") {
		t.Fatalf("expected regs output to delegate to DebugInfo, got %q", out)
	}
}

func TestQuitStopsTheLoop(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00})

	_, _, quit := m.execute("quit")

	if !quit {
		t.Fatal("expected quit to end the monitor loop")
	}
}

func TestUnknownCommandReportsError(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00})

	out, style, _ := m.execute("frobnicate")

	if style != styleError {
		t.Fatalf("expected styleError, got %v", style)
	}
	if !strings.Contains(out, "frobnicate") {
		t.Fatalf("expected error to name the unknown command, got %q", out)
	}
}

func TestSnapshotWritesFile(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00})

	out, style, _ := m.execute("snapshot monitor-test-snapshot.txt")

	if style != styleInfo {
		t.Fatalf("expected styleInfo, got %v", style)
	}
	if !strings.Contains(out, "wrote") {
		t.Fatalf("expected confirmation of the write, got %q", out)
	}

	dir, err := paths.ResourcePath("snapshots")
	if err != nil {
		t.Fatalf("could not resolve snapshot directory: %v", err)
	}
	full := dir + "/monitor-test-snapshot.txt"
	defer os.Remove(full)

	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("expected snapshot file to exist: %v", err)
	}
	if !strings.Contains(string(data), "PC=") {
		t.Fatalf("expected snapshot to contain debug info, got %q", string(data))
	}
}

func TestRunRejectsWrongGoroutine(t *testing.T) {
	m := newTestMonitor(t, []byte{0xEA, 0x00, 0x00, 0x00})
	m.goroutineID = assert.GetGoRoutineID() + 1 // a goroutine ID that isn't this one

	if err := m.Run(); err == nil {
		t.Fatal("expected Run to reject a mismatched goroutine without touching the terminal")
	}
}

func TestEmulatorStepWiring(t *testing.T) {
	e := runtime.New()
	e.Load3DSX(make3DSX([]byte{0xEA, 0x00, 0x00, 0x00}))
	if e.CPU.PC() != memory.VAddrCodeBase {
		t.Fatalf("expected PC at code base, got %#x", e.CPU.PC())
	}
	e.Step()
	if e.CPU.Cycles == 0 {
		t.Fatal("expected Step to execute at least one instruction")
	}
}
