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

// ResetType controls how an Event behaves once signaled.
type ResetType int

const (
	ResetOneShot ResetType = iota
	ResetSticky
	ResetPulse
)

// SyncObjectKind tags which variant a SyncObject holds.
type SyncObjectKind int

const (
	SyncMutex SyncObjectKind = iota
	SyncSemaphore
	SyncEvent
)

// SyncObject is a mutex, semaphore, or event. Only the fields for its
// Kind are meaningful, mirroring the tagged-union shape of
// kernel/sync.rs's SyncObject enum.
type SyncObject struct {
	Kind SyncObjectKind

	// Mutex
	OwnerThread uint32
	HasOwner    bool
	LockCount   uint32

	// Semaphore
	Count    int32
	MaxCount int32

	// Event
	Signaled  bool
	ResetType ResetType

	Waiting []uint32
}

func newMutex() *SyncObject {
	return &SyncObject{Kind: SyncMutex}
}

func newSemaphore(initial, max int32) *SyncObject {
	return &SyncObject{Kind: SyncSemaphore, Count: initial, MaxCount: max}
}

func newEvent(resetType ResetType) *SyncObject {
	return &SyncObject{Kind: SyncEvent, ResetType: resetType}
}

// AcquireResult is the outcome of attempting to acquire a SyncObject.
type AcquireResult int

const (
	AcquireSuccess AcquireResult = iota
	AcquireWouldBlock
)

func waitingContains(waiting []uint32, threadID uint32) bool {
	for _, w := range waiting {
		if w == threadID {
			return true
		}
	}
	return false
}

// acquire attempts to take ownership of obj on behalf of threadID,
// queuing it as a waiter on failure. Grounded on kernel/sync.rs's
// acquire().
func acquire(obj *SyncObject, threadID uint32) AcquireResult {
	switch obj.Kind {
	case SyncMutex:
		switch {
		case !obj.HasOwner:
			obj.HasOwner = true
			obj.OwnerThread = threadID
			obj.LockCount = 1
			return AcquireSuccess
		case obj.OwnerThread == threadID:
			obj.LockCount++
			return AcquireSuccess
		default:
			if !waitingContains(obj.Waiting, threadID) {
				obj.Waiting = append(obj.Waiting, threadID)
			}
			return AcquireWouldBlock
		}

	case SyncSemaphore:
		if obj.Count > 0 {
			obj.Count--
			return AcquireSuccess
		}
		if !waitingContains(obj.Waiting, threadID) {
			obj.Waiting = append(obj.Waiting, threadID)
		}
		return AcquireWouldBlock

	case SyncEvent:
		if obj.Signaled {
			if obj.ResetType == ResetOneShot {
				obj.Signaled = false
			}
			return AcquireSuccess
		}
		if !waitingContains(obj.Waiting, threadID) {
			obj.Waiting = append(obj.Waiting, threadID)
		}
		return AcquireWouldBlock
	}
	return AcquireWouldBlock
}

// release hands obj back (or signals it, for events) on behalf of
// threadID and returns the IDs of any threads that should be woken.
// Grounded on kernel/sync.rs's release().
func release(obj *SyncObject, threadID uint32) []uint32 {
	var woken []uint32

	switch obj.Kind {
	case SyncMutex:
		if obj.HasOwner && obj.OwnerThread == threadID {
			obj.LockCount--
			if obj.LockCount == 0 {
				obj.HasOwner = false
				if len(obj.Waiting) > 0 {
					next := obj.Waiting[0]
					obj.Waiting = obj.Waiting[1:]
					obj.HasOwner = true
					obj.OwnerThread = next
					obj.LockCount = 1
					woken = append(woken, next)
				}
			}
		}

	case SyncSemaphore:
		if obj.Count < obj.MaxCount {
			obj.Count++
			if len(obj.Waiting) > 0 && obj.Count > 0 {
				next := obj.Waiting[0]
				obj.Waiting = obj.Waiting[1:]
				obj.Count--
				woken = append(woken, next)
			}
		}

	case SyncEvent:
		obj.Signaled = true
		switch obj.ResetType {
		case ResetOneShot:
			if len(obj.Waiting) > 0 {
				next := obj.Waiting[0]
				obj.Waiting = obj.Waiting[1:]
				obj.Signaled = false
				woken = append(woken, next)
			}
		case ResetSticky:
			woken = append(woken, obj.Waiting...)
			obj.Waiting = nil
		case ResetPulse:
			woken = append(woken, obj.Waiting...)
			obj.Waiting = nil
			obj.Signaled = false
		}
	}

	return woken
}

// clearEvent resets a sticky or pulse event's signaled flag without
// waking anyone. No-op on mutexes and semaphores.
func clearEvent(obj *SyncObject) {
	if obj.Kind == SyncEvent {
		obj.Signaled = false
	}
}
