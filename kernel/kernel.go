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

// MaxThreads bounds concurrent guest threads, per spec.md §4.2's
// resource cap. CreateThread beyond this fails with OUT_OF_RANGE and
// does not perturb scheduler state.
const MaxThreads = 32

// Kernel holds every piece of scheduling and object state shared by
// the guest threads of one loaded process: the handle table, the
// thread list, synchronization objects, and the port/session name
// tables used by srv:.
type Kernel struct {
	handles *HandleTable

	NextProcessID uint32
	nextThreadID  uint32
	nextSyncID    uint32

	Threads       []*Thread
	CurrentThread int

	SyncObjects map[uint32]*SyncObject

	ports    map[string]uint32
	sessions map[uint32]string

	NeedsReschedule bool
	LastConnectFail string
}

// New creates an empty kernel with no threads and no registered ports.
func New() *Kernel {
	return &Kernel{
		handles:       newHandleTable(),
		NextProcessID: 1,
		nextThreadID:  1,
		nextSyncID:    1,
		SyncObjects:   make(map[uint32]*SyncObject),
		ports:         make(map[string]uint32),
		sessions:      make(map[uint32]string),
	}
}

// AllocateHandle inserts entry into the handle table.
func (k *Kernel) AllocateHandle(entry HandleEntry) uint32 {
	return k.handles.Allocate(entry)
}

// GetHandle resolves a handle.
func (k *Kernel) GetHandle(handle uint32) (HandleEntry, bool) {
	return k.handles.Get(handle)
}

// CloseHandle removes a handle-table entry, always reporting success
// to the caller even if the handle did not exist (closing an
// already-closed handle is harmless in HLE).
func (k *Kernel) CloseHandle(handle uint32) {
	k.handles.Close(handle)
}

// AllocSyncID reserves a fresh synchronization-object ID, used as the
// key into SyncObjects independent of the handle namespace.
func (k *Kernel) AllocSyncID() uint32 {
	id := k.nextSyncID
	k.nextSyncID++
	return id
}

// AllocThreadID reserves and returns a fresh thread ID.
func (k *Kernel) AllocThreadID() uint32 {
	id := k.nextThreadID
	k.nextThreadID++
	return id
}

// RegisterPort makes name connectable and allocates its port handle.
func (k *Kernel) RegisterPort(name string) {
	handle := k.handles.Allocate(HandleEntry{Kind: KindPort, PortName: name})
	k.ports[name] = handle
}

// ConnectToPort allocates a session handle bound to name, or returns
// ok=false if no port by that name was registered.
func (k *Kernel) ConnectToPort(name string) (uint32, bool) {
	if _, ok := k.ports[name]; !ok {
		return 0, false
	}
	handle := k.handles.Allocate(HandleEntry{Kind: KindSession, PortName: name})
	k.sessions[handle] = name
	return handle, true
}

// SessionService returns the service name a session handle is bound
// to.
func (k *Kernel) SessionService(handle uint32) (string, bool) {
	name, ok := k.sessions[handle]
	return name, ok
}

// CurrentThreadID returns the ID of the running thread, or 0 if there
// is none (no threads created yet, or index out of range).
func (k *Kernel) CurrentThreadID() uint32 {
	if k.CurrentThread < len(k.Threads) {
		return k.Threads[k.CurrentThread].ID
	}
	return 0
}

// FindThread looks up a thread by ID.
func (k *Kernel) FindThread(id uint32) (*Thread, bool) {
	for _, t := range k.Threads {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// WakeThread wakes the named thread if it exists and is waiting.
func (k *Kernel) WakeThread(id uint32) {
	if t, ok := k.FindThread(id); ok {
		t.Wake()
	}
}

// ScheduleNext implements spec.md §4.2's scheduler: scan all threads
// for the Ready thread with the minimum priority value (lower value
// wins), breaking ties by first-seen scan order. If none is Ready and
// the current thread is still Running, it keeps running. This departs
// from kernel/mod.rs's round-robin-from-current schedule_next(), per
// spec.md's explicit algorithm (see DESIGN.md).
func (k *Kernel) ScheduleNext() (int, bool) {
	best := -1
	for i, t := range k.Threads {
		if t.State != ThreadReady {
			continue
		}
		if best == -1 || t.Priority < k.Threads[best].Priority {
			best = i
		}
	}
	if best != -1 {
		k.CurrentThread = best
		k.Threads[best].State = ThreadRunning
		return best, true
	}
	if k.CurrentThread < len(k.Threads) && k.Threads[k.CurrentThread].State == ThreadRunning {
		return k.CurrentThread, true
	}
	return 0, false
}

// WakeExpiredSleepers decrements every sleeping thread's remaining
// time by elapsedNS and wakes those that reach zero.
func (k *Kernel) WakeExpiredSleepers(elapsedNS uint64) {
	for _, t := range k.Threads {
		if t.State != ThreadWaiting || t.WaitReason.Kind != WaitSleep {
			continue
		}
		if t.WaitReason.SleepNS <= elapsedNS {
			t.Wake()
		} else {
			t.WaitReason.SleepNS -= elapsedNS
		}
	}
}

// ContextSwitch saves the CPU's state into the current thread, marks
// it Ready if it was Running, then schedules and restores the next
// runnable thread. If no thread is runnable the CPU is halted.
// Grounded on emulator.rs's context_switch().
func (k *Kernel) ContextSwitch(c *cpu.CPU) {
	if k.CurrentThread < len(k.Threads) {
		cur := k.Threads[k.CurrentThread]
		cur.SaveCPU(c)
		if cur.State == ThreadRunning {
			cur.State = ThreadReady
		}
	}

	if next, ok := k.ScheduleNext(); ok {
		k.Threads[next].RestoreInto(c)
		c.Halted = false
	} else {
		c.Halted = true
	}
}

// Preempt yields the current thread for fairness if another thread of
// any priority is Ready, per spec.md §4.2's time-slice preemption.
func (k *Kernel) Preempt(c *cpu.CPU) {
	if len(k.Threads) <= 1 {
		return
	}
	hasReady := false
	for i, t := range k.Threads {
		if i != k.CurrentThread && t.State == ThreadReady {
			hasReady = true
			break
		}
	}
	if hasReady {
		k.ContextSwitch(c)
	}
}

// AcquireSync attempts to acquire the sync object identified by
// syncID on behalf of threadID.
func (k *Kernel) AcquireSync(syncID, threadID uint32) (AcquireResult, bool) {
	obj, ok := k.SyncObjects[syncID]
	if !ok {
		return AcquireWouldBlock, false
	}
	return acquire(obj, threadID), true
}

// ReleaseSync releases the sync object identified by syncID on behalf
// of threadID and wakes every thread release() names.
func (k *Kernel) ReleaseSync(syncID, threadID uint32) {
	obj, ok := k.SyncObjects[syncID]
	if !ok {
		return
	}
	for _, tid := range release(obj, threadID) {
		k.WakeThread(tid)
	}
}

// ClearSync clears an event's signaled flag; no-op on other kinds.
func (k *Kernel) ClearSync(syncID uint32) {
	if obj, ok := k.SyncObjects[syncID]; ok {
		clearEvent(obj)
	}
}

// SignalEventHandle is release() applied directly to an event handle,
// waking every waiter regardless of reset type intricacies beyond
// what release() already encodes. Used by the runtime orchestrator to
// deliver once-per-frame notifications (apt, gsp) the way
// emulator.rs's signal_event_handle does.
func (k *Kernel) SignalEventHandle(handle uint32) {
	entry, ok := k.handles.Get(handle)
	if !ok || entry.Kind != KindEvent {
		return
	}
	k.ReleaseSync(entry.ID, 0)
}
