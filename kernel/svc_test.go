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

package kernel

import (
	"testing"

	"github.com/citrine3ds/citrine3ds/cpu"
	"github.com/citrine3ds/citrine3ds/memory"
)

func newSVCFixture() (*cpu.CPU, *memory.Memory, *Kernel) {
	c := cpu.New()
	c.SwitchMode(cpu.ModeSVC)
	c.Regs[14] = 0x0010_1000
	c.SetSPSR(cpu.ModeSYS)
	return c, memory.New(), New()
}

func TestDispatchRestoresModeFromSPSR(t *testing.T) {
	c, mem, k := newSVCFixture()
	Dispatch(c, mem, k, 0x28) // GetSystemTick, any harmless SVC

	if c.Mode() != cpu.ModeSYS {
		t.Fatalf("expected mode restored to SYS, got %#x", c.Mode())
	}
	if c.Regs[15] != 0x0010_1000 {
		t.Fatalf("expected PC restored from LR, got %#x", c.Regs[15])
	}
}

func TestDispatchGetSystemTick(t *testing.T) {
	c, mem, k := newSVCFixture()
	c.Cycles = 0x1_0000_0002
	Dispatch(c, mem, k, 0x28)

	if c.Regs[0] != 2 || c.Regs[1] != 1 {
		t.Fatalf("expected tick split across r0/r1, got r0=%#x r1=%#x", c.Regs[0], c.Regs[1])
	}
}

func TestDispatchCreateThread(t *testing.T) {
	c, mem, k := newSVCFixture()
	c.Regs[1] = 0x0010_2000 // entrypoint
	c.Regs[2] = 0x1234      // arg
	c.Regs[3] = 0x0800_4000 // stack top
	c.Regs[4] = 0x20        // priority

	Dispatch(c, mem, k, 0x08)

	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected success, got %#x", c.Regs[0])
	}
	if len(k.Threads) != 1 {
		t.Fatalf("expected one thread created, got %d", len(k.Threads))
	}
	if k.Threads[0].Saved.Regs[0] != 0x1234 {
		t.Fatalf("expected arg passed in r0, got %#x", k.Threads[0].Saved.Regs[0])
	}
	if _, ok := k.GetHandle(c.Regs[1]); !ok {
		t.Fatal("expected handle to resolve to the new thread")
	}
}

func TestDispatchCreateThreadFailsAtCap(t *testing.T) {
	c, mem, k := newSVCFixture()
	for i := 0; i < MaxThreads; i++ {
		k.Threads = append(k.Threads, NewThread(uint32(i+1), 1, 0x100000, 0x8004000, 0x20, 0))
	}

	Dispatch(c, mem, k, 0x08)

	if c.Regs[0] != ResultOutOfRange {
		t.Fatalf("expected OUT_OF_RANGE at thread cap, got %#x", c.Regs[0])
	}
}

func TestDispatchCloseHandle(t *testing.T) {
	c, mem, k := newSVCFixture()
	h := k.AllocateHandle(HandleEntry{Kind: KindTimer})
	c.Regs[0] = h

	Dispatch(c, mem, k, 0x23)

	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected success, got %#x", c.Regs[0])
	}
	if _, ok := k.GetHandle(h); ok {
		t.Fatal("expected handle to be closed")
	}
}

func TestDispatchCreateEventAndSignal(t *testing.T) {
	c, mem, k := newSVCFixture()
	c.Regs[1] = 0 // one-shot
	Dispatch(c, mem, k, 0x17)
	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected success creating event, got %#x", c.Regs[0])
	}
	handle := c.Regs[1]

	c.Regs[0] = handle
	Dispatch(c, mem, k, 0x18)
	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected success signaling event, got %#x", c.Regs[0])
	}

	entry, _ := k.GetHandle(handle)
	obj := k.SyncObjects[entry.ID]
	if !obj.Signaled {
		t.Fatal("expected event to be signaled")
	}
}

func TestDispatchWaitSynchronization1(t *testing.T) {
	c, mem, k := newSVCFixture()
	k.Threads = []*Thread{NewThread(1, 1, 0x100000, 0x8004000, 0x20, 0)}
	k.CurrentThread = 0

	// mutex created unlocked: waiting on it should succeed immediately
	c.Regs[1] = 0 // not initially locked
	Dispatch(c, mem, k, 0x13)
	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected success creating mutex, got %#x", c.Regs[0])
	}
	handle := c.Regs[1]

	c.SwitchMode(cpu.ModeSVC)
	c.Regs[14] = 0x0010_1000
	c.SetSPSR(cpu.ModeSYS)
	c.Regs[0] = handle
	Dispatch(c, mem, k, 0x24)
	if c.Mode() != cpu.ModeSYS {
		t.Fatalf("expected mode restored to SYS, got %#x", c.Mode())
	}
	if c.Regs[15] != 0x0010_1000 {
		t.Fatalf("expected PC restored from LR, got %#x", c.Regs[15])
	}
	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected success acquiring free mutex, got %#x", c.Regs[0])
	}
	if k.Threads[0].State == ThreadWaiting {
		t.Fatal("thread holding the mutex should not be left waiting")
	}

	// a second thread waiting on a mutex already owned by thread 1 blocks
	// and is suspended, but the SVC itself still reports success and
	// leaves the CPU mode/PC restored
	k.Threads = append(k.Threads, NewThread(2, 1, 0x100000, 0x8004000, 0x20, 0))
	k.CurrentThread = 1

	c.SwitchMode(cpu.ModeSVC)
	c.Regs[14] = 0x0010_1000
	c.SetSPSR(cpu.ModeSYS)
	c.Regs[0] = handle
	Dispatch(c, mem, k, 0x24)

	if c.Mode() != cpu.ModeSYS {
		t.Fatalf("expected mode restored to SYS, got %#x", c.Mode())
	}
	if c.Regs[15] != 0x0010_1000 {
		t.Fatalf("expected PC restored from LR, got %#x", c.Regs[15])
	}
	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected WaitSynchronization1 to report success even when blocking, got %#x", c.Regs[0])
	}
	if !k.NeedsReschedule {
		t.Fatal("expected blocking wait to request a reschedule")
	}
	if k.Threads[1].State != ThreadWaiting {
		t.Fatalf("expected second thread suspended waiting on the mutex, got state %v", k.Threads[1].State)
	}
}

func TestDispatchWaitSynchronizationN(t *testing.T) {
	c, mem, k := newSVCFixture()
	k.Threads = []*Thread{NewThread(1, 1, 0x100000, 0x8004000, 0x20, 0)}
	k.CurrentThread = 0

	// a timer handle is always reported signaled: it crosses the
	// Session/Timer/Thread boundary that WaitSynchronizationN treats as
	// immediately satisfied, regardless of position in the handle list
	c.Regs[1] = 0
	Dispatch(c, mem, k, 0x1E) // CreateTimer
	timerHandle := c.Regs[1]

	c.Regs[1] = 0 // one-shot
	Dispatch(c, mem, k, 0x17) // CreateEvent, left unsignaled
	eventHandle := c.Regs[1]

	handlesPtr := uint32(0x0010_0000)
	mem.Write32(handlesPtr+0*4, eventHandle)
	mem.Write32(handlesPtr+1*4, timerHandle)

	c.Regs[1] = handlesPtr
	c.Regs[2] = 2 // count

	c.SwitchMode(cpu.ModeSVC)
	c.Regs[14] = 0x0010_1000
	c.SetSPSR(cpu.ModeSYS)
	Dispatch(c, mem, k, 0x25)

	if c.Mode() != cpu.ModeSYS {
		t.Fatalf("expected mode restored to SYS, got %#x", c.Mode())
	}
	if c.Regs[15] != 0x0010_1000 {
		t.Fatalf("expected PC restored from LR, got %#x", c.Regs[15])
	}
	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected success, got %#x", c.Regs[0])
	}
	if c.Regs[1] != 1 {
		t.Fatalf("expected r1 to hold the index of the signaled timer (1), got %d", c.Regs[1])
	}
}

func TestDispatchBreakHaltsCPU(t *testing.T) {
	c, mem, k := newSVCFixture()
	k.Threads = []*Thread{NewThread(1, 1, 0x100000, 0x8004000, 0x20, 0)}
	k.Threads[0].State = ThreadRunning
	k.CurrentThread = 0

	Dispatch(c, mem, k, 0x3D)

	if !c.Halted {
		t.Fatal("expected CPU halted after Break")
	}
	if k.Threads[0].State != ThreadDead {
		t.Fatal("expected current thread killed after Break")
	}
}

func TestDispatchConnectToPortRecordsFailure(t *testing.T) {
	c, mem, k := newSVCFixture()
	namePtr := uint32(0x0010_0000)
	name := "nope:"
	for i, ch := range []byte(name) {
		mem.Write8(namePtr+uint32(i), ch)
	}
	c.Regs[1] = namePtr

	Dispatch(c, mem, k, 0x2D)

	if c.Regs[0] != ResultNotFound {
		t.Fatalf("expected NOT_FOUND, got %#x", c.Regs[0])
	}
	if k.LastConnectFail != name {
		t.Fatalf("expected LastConnectFail recorded, got %q", k.LastConnectFail)
	}
}

func TestDispatchOutputDebugStringSucceeds(t *testing.T) {
	c, mem, k := newSVCFixture()
	c.Regs[0] = 0x0010_0000 // string pointer, unread by this handler
	c.Regs[1] = 5           // length

	Dispatch(c, mem, k, 0x3C)

	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected success, got %#x", c.Regs[0])
	}
}

func TestDispatchUnknownSVCSucceeds(t *testing.T) {
	c, mem, k := newSVCFixture()
	Dispatch(c, mem, k, 0x7F)
	if c.Regs[0] != ResultSuccess {
		t.Fatalf("expected permissive success for unknown SVC, got %#x", c.Regs[0])
	}
}
