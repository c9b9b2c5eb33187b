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

import "github.com/citrine3ds/citrine3ds/cpu"

// ThreadState is a guest thread's scheduling state.
type ThreadState int

const (
	ThreadReady ThreadState = iota
	ThreadRunning
	ThreadWaiting
	ThreadDead
)

// WaitKind tags what a Waiting thread is blocked on.
type WaitKind int

const (
	WaitNone WaitKind = iota
	WaitSleep
	WaitMutex
	WaitSemaphore
	WaitEvent
	WaitArbitration
	WaitSyncMultiple
)

// WaitReason records why a thread is suspended and, for handle-based
// waits, which handle it is waiting on.
type WaitReason struct {
	Kind    WaitKind
	Handle  uint32
	SleepNS uint64
}

// SavedRegisters is a thread's CPU context while it is not the one
// running: the full register file plus CPSR. TLS/CP15 state is
// carried separately in Thread.CP15, copied by SaveCPU and
// RestoreInto when a thread is swapped onto the shared CPU core (see
// Kernel.ContextSwitch).
type SavedRegisters struct {
	Regs [16]uint32
	CPSR uint32
}

func (s *SavedRegisters) pc() uint32 { return s.Regs[15] }
func (s *SavedRegisters) sp() uint32 { return s.Regs[13] }

// Thread is one guest thread of execution.
type Thread struct {
	ID        uint32
	ProcessID uint32
	Priority  int32
	State     ThreadState

	Saved      SavedRegisters
	CP15       cpu.CP15
	WaitReason WaitReason

	TLSAddr    uint32
	StackTop   uint32
	Entrypoint uint32
}

// NewThread creates a thread ready to run at entrypoint with the
// given stack and priority. If bit 0 of entrypoint is set the thread
// starts in Thumb mode, matching how ctrulib-style entrypoints encode
// the initial instruction set.
func NewThread(id, processID, entrypoint, stackTop uint32, priority int32, tlsAddr uint32) *Thread {
	t := &Thread{
		ID:         id,
		ProcessID:  processID,
		Priority:   priority,
		State:      ThreadReady,
		TLSAddr:    tlsAddr,
		StackTop:   stackTop,
		Entrypoint: entrypoint,
		CP15:       cpu.NewCP15(),
	}
	t.Saved.Regs[15] = entrypoint
	t.Saved.Regs[13] = stackTop
	if entrypoint&1 != 0 {
		t.Saved.CPSR = cpu.ModeUser | cpu.FlagT
		t.Saved.Regs[15] = entrypoint &^ 1
	} else {
		t.Saved.CPSR = cpu.ModeUser
	}
	t.CP15.ThreadIDUser = tlsAddr
	t.CP15.ThreadIDPriv = tlsAddr
	return t
}

// Suspend moves the thread to Waiting with an untimed reason.
func (t *Thread) Suspend(reason WaitReason) {
	t.State = ThreadWaiting
	t.WaitReason = reason
}

// SuspendTimed moves the thread to Waiting with a nanosecond timeout
// recorded on the wait reason. Only WaitSleep reasons are currently
// ever auto-woken by the timeout path (see DESIGN.md Open Question 2).
func (t *Thread) SuspendTimed(reason WaitReason, timeoutNS uint64) {
	reason.SleepNS = timeoutNS
	t.State = ThreadWaiting
	t.WaitReason = reason
}

// Wake transitions a Waiting thread back to Ready.
func (t *Thread) Wake() {
	if t.State == ThreadWaiting {
		t.State = ThreadReady
		t.WaitReason = WaitReason{}
	}
}

// Kill marks the thread Dead; it is never scheduled again.
func (t *Thread) Kill() {
	t.State = ThreadDead
}

// IsAlive reports whether the thread can still be scheduled.
func (t *Thread) IsAlive() bool {
	return t.State != ThreadDead
}

// IsWaitingOn reports whether the thread is blocked on the given
// handle, for mutex/semaphore/event/arbitration wait reasons.
func (t *Thread) IsWaitingOn(handle uint32) bool {
	switch t.WaitReason.Kind {
	case WaitMutex, WaitSemaphore, WaitEvent, WaitArbitration:
		return t.WaitReason.Handle == handle
	default:
		return false
	}
}

// SaveCPU captures a CPU core's full visible state into the thread.
func (t *Thread) SaveCPU(c *cpu.CPU) {
	t.Saved.Regs = c.Regs
	t.Saved.CPSR = c.CPSR
	t.CP15 = c.CP15
}

// RestoreInto installs the thread's saved context onto a CPU core.
func (t *Thread) RestoreInto(c *cpu.CPU) {
	c.Regs = t.Saved.Regs
	c.CPSR = t.Saved.CPSR
	c.CP15 = t.CP15
}
