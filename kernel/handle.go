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

// Package kernel implements the HLE microkernel: a handle table,
// threads, a priority-preemptive scheduler, synchronization objects,
// and the SVC dispatch table.
package kernel

// HandleKind tags what a handle table entry refers to.
type HandleKind int

const (
	KindProcess HandleKind = iota
	KindThread
	KindMutex
	KindSemaphore
	KindEvent
	KindPort
	KindSession
	KindSharedMemory
	KindTimer
)

// HandleEntry is a tagged union over every kind of kernel object a
// guest handle can address. Only the fields relevant to Kind are
// meaningful.
type HandleEntry struct {
	Kind HandleKind

	ID uint32 // process/thread id, or sync-object id

	PortName string // Port, Session

	SharedMemBase uint32
	SharedMemSize uint32
}

// Pseudo-handles, resolved by the SVC layer without a handle-table
// lookup.
const (
	PseudoHandleCurrentThread  = 0xFFFF_8000
	PseudoHandleCurrentProcess = 0xFFFF_8001
)

// HandleTable allocates and resolves opaque 32-bit handles. Handles
// start at 0x100 to keep the low range free for pseudo-handles and
// to make guest debug output visibly distinct from raw indices.
type HandleTable struct {
	entries    map[uint32]HandleEntry
	nextHandle uint32
}

func newHandleTable() *HandleTable {
	return &HandleTable{
		entries:    make(map[uint32]HandleEntry),
		nextHandle: 0x100,
	}
}

// Allocate inserts entry and returns its newly assigned handle.
func (t *HandleTable) Allocate(entry HandleEntry) uint32 {
	handle := t.nextHandle
	t.nextHandle++
	t.entries[handle] = entry
	return handle
}

// Get looks up a handle, returning ok=false if it does not exist.
func (t *HandleTable) Get(handle uint32) (HandleEntry, bool) {
	e, ok := t.entries[handle]
	return e, ok
}

// Close removes a handle-table entry. It does not touch whatever
// sync object or thread the handle referred to (see DESIGN.md's Open
// Question decision on closed-handle waiters).
func (t *HandleTable) Close(handle uint32) bool {
	if _, ok := t.entries[handle]; !ok {
		return false
	}
	delete(t.entries, handle)
	return true
}
