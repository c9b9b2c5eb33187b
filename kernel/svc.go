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
	"github.com/citrine3ds/citrine3ds/cpu"
	"github.com/citrine3ds/citrine3ds/memory"
)

// Result codes, matching the real 3DS kernel's error-code encoding
// closely enough for HLE purposes. Grounded on kernel/svc.rs.
const (
	ResultSuccess      = 0x0000_0000
	ResultInvalidHandle = 0xD8E0_07F7
	ResultTimeout      = 0x0940_1BFE
	ResultNotFound     = 0xD880_07FA
	ResultOutOfRange   = 0xD8E0_07FD
)

// Dispatch executes one SVC, restoring the pre-SVC processor mode
// from LR/SPSR first (the interpreter's execSVC/thumbSVC only latch
// the request; the kernel is responsible for returning control before
// running the handler), then runs the handler named by svcNum. An
// unrecognized svcNum succeeds with no effect, matching the HLE's
// permissive policy.
func Dispatch(c *cpu.CPU, mem *memory.Memory, k *Kernel, svcNum uint32) {
	c.Regs[15] = c.Regs[14]
	oldCPSR := c.SPSR()
	c.SwitchMode(oldCPSR & 0x1F)
	c.CPSR = oldCPSR

	switch svcNum {
	case 0x01:
		svcControlMemory(c, mem)
	case 0x02:
		svcQueryMemory(c)
	case 0x03:
		svcExitProcess(c, k)
	case 0x08:
		svcCreateThread(c, k)
	case 0x09:
		svcExitThread(c, k)
	case 0x0A:
		svcSleepThread(c, k)
	case 0x0B:
		svcGetThreadPriority(c, k)
	case 0x0C:
		svcSetThreadPriority(c, k)
	case 0x13:
		svcCreateMutex(c, k)
	case 0x14:
		svcReleaseMutex(c, k)
	case 0x15:
		svcCreateSemaphore(c, k)
	case 0x16:
		svcReleaseSemaphore(c, k)
	case 0x17:
		svcCreateEvent(c, k)
	case 0x18:
		svcSignalEvent(c, k)
	case 0x19:
		svcClearEvent(c, k)
	case 0x1E:
		svcCreateTimer(c, k)
	case 0x21:
		svcCreateMemoryBlock(c, k, mem)
	case 0x22:
		svcMapMemoryBlock(c)
	case 0x23:
		svcCloseHandle(c, k)
	case 0x24:
		svcWaitSynchronization1(c, k)
	case 0x25:
		svcWaitSynchronizationN(c, mem, k)
	case 0x27:
		svcDuplicateHandle(c, k)
	case 0x28:
		svcGetSystemTick(c)
	case 0x2D:
		svcConnectToPort(c, mem, k)
	case 0x32:
		svcSendSyncRequest(c)
	case 0x35:
		svcGetProcessID(c, k)
	case 0x37:
		svcGetThreadID(c, k)
	case 0x38:
		svcGetResourceLimit(c, k)
	case 0x39:
		svcGetResourceLimitValues(c, mem)
	case 0x3C:
		svcOutputDebugString(c)
	case 0x3D:
		svcBreak(c, k)
	default:
		c.Regs[0] = ResultSuccess
	}
}

func svcControlMemory(c *cpu.CPU, mem *memory.Memory) {
	op := c.Regs[0]
	addr0 := c.Regs[1]
	size := c.Regs[3]

	switch op & 0xFFFF {
	case 0x0001, 0x0003: // COMMIT, ALLOC
		if addr0 == 0 {
			c.Regs[1] = mem.AllocHeap(size)
		} else {
			c.Regs[1] = addr0
		}
	case 0x0004, 0x0005, 0x0006: // MAP, UNMAP, PROTECT
		c.Regs[1] = addr0
	default:
		if op&0x3 != 0 {
			if addr0 == 0 {
				c.Regs[1] = mem.AllocHeap(size)
			} else {
				c.Regs[1] = addr0
			}
		} else {
			c.Regs[1] = addr0
		}
	}
	c.Regs[0] = ResultSuccess
}

func svcQueryMemory(c *cpu.CPU) {
	addr := c.Regs[2]
	c.Regs[1] = addr
	c.Regs[2] = 0x1000
	c.Regs[3] = 0x3 // RW
	c.Regs[4] = 0x3 // committed
	c.Regs[5] = 0
	c.Regs[0] = ResultSuccess
}

func svcExitProcess(c *cpu.CPU, k *Kernel) {
	for _, t := range k.Threads {
		t.Kill()
	}
	c.Halted = true
	c.Regs[0] = ResultSuccess
}

func svcCreateThread(c *cpu.CPU, k *Kernel) {
	if len(k.Threads) >= MaxThreads {
		c.Regs[0] = ResultOutOfRange
		return
	}

	entrypoint := c.Regs[1]
	arg := c.Regs[2]
	stackTop := c.Regs[3]
	priority := int32(c.Regs[4])
	if priority < 0 {
		priority = 0
	} else if priority > 63 {
		priority = 63
	}

	id := k.AllocThreadID()
	thread := NewThread(id, 1, entrypoint, stackTop, priority, c.TLSBase())
	thread.Saved.Regs[0] = arg
	thread.Saved.CPSR = (thread.Saved.CPSR &^ 0x1F) | cpu.ModeSYS
	k.Threads = append(k.Threads, thread)

	handle := k.AllocateHandle(HandleEntry{Kind: KindThread, ID: id})
	c.Regs[1] = handle
	c.Regs[0] = ResultSuccess
	k.NeedsReschedule = true
}

func svcExitThread(c *cpu.CPU, k *Kernel) {
	if k.CurrentThread < len(k.Threads) {
		k.Threads[k.CurrentThread].Kill()
	}
	c.Regs[0] = ResultSuccess
	k.NeedsReschedule = true
}

func svcSleepThread(c *cpu.CPU, k *Kernel) {
	ns := uint64(c.Regs[0]) | uint64(c.Regs[1])<<32

	if ns == 0 {
		c.Regs[0] = ResultSuccess
		k.NeedsReschedule = true
		return
	}

	if k.CurrentThread < len(k.Threads) {
		k.Threads[k.CurrentThread].SuspendTimed(WaitReason{Kind: WaitSleep}, ns)
	}
	c.Regs[0] = ResultSuccess
	k.NeedsReschedule = true
}

func svcGetThreadPriority(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[1]
	if handle == PseudoHandleCurrentThread {
		if k.CurrentThread < len(k.Threads) {
			c.Regs[1] = uint32(k.Threads[k.CurrentThread].Priority)
			c.Regs[0] = ResultSuccess
		} else {
			c.Regs[0] = ResultInvalidHandle
		}
		return
	}
	entry, ok := k.GetHandle(handle)
	if !ok || entry.Kind != KindThread {
		c.Regs[0] = ResultInvalidHandle
		return
	}
	t, ok := k.FindThread(entry.ID)
	if !ok {
		c.Regs[0] = ResultInvalidHandle
		return
	}
	c.Regs[1] = uint32(t.Priority)
	c.Regs[0] = ResultSuccess
}

func svcSetThreadPriority(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[0]
	priority := int32(c.Regs[1])
	if handle == PseudoHandleCurrentThread {
		if k.CurrentThread < len(k.Threads) {
			k.Threads[k.CurrentThread].Priority = priority
			c.Regs[0] = ResultSuccess
		} else {
			c.Regs[0] = ResultInvalidHandle
		}
		return
	}
	entry, ok := k.GetHandle(handle)
	if !ok || entry.Kind != KindThread {
		c.Regs[0] = ResultInvalidHandle
		return
	}
	t, ok := k.FindThread(entry.ID)
	if !ok {
		c.Regs[0] = ResultInvalidHandle
		return
	}
	t.Priority = priority
	c.Regs[0] = ResultSuccess
}

func svcCreateMutex(c *cpu.CPU, k *Kernel) {
	initiallyLocked := c.Regs[1] != 0
	id := k.AllocSyncID()
	obj := newMutex()
	if initiallyLocked && k.CurrentThread < len(k.Threads) {
		obj.HasOwner = true
		obj.OwnerThread = k.Threads[k.CurrentThread].ID
		obj.LockCount = 1
	}
	k.SyncObjects[id] = obj
	handle := k.AllocateHandle(HandleEntry{Kind: KindMutex, ID: id})
	c.Regs[1] = handle
	c.Regs[0] = ResultSuccess
}

func svcReleaseMutex(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[0]
	entry, ok := k.GetHandle(handle)
	if !ok || entry.Kind != KindMutex {
		c.Regs[0] = ResultInvalidHandle
		return
	}
	k.ReleaseSync(entry.ID, k.CurrentThreadID())
	c.Regs[0] = ResultSuccess
}

func svcCreateSemaphore(c *cpu.CPU, k *Kernel) {
	initial := int32(c.Regs[1])
	max := int32(c.Regs[2])
	id := k.AllocSyncID()
	k.SyncObjects[id] = newSemaphore(initial, max)
	handle := k.AllocateHandle(HandleEntry{Kind: KindSemaphore, ID: id})
	c.Regs[1] = handle
	c.Regs[0] = ResultSuccess
}

func svcReleaseSemaphore(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[1]
	count := int32(c.Regs[2])
	entry, ok := k.GetHandle(handle)
	if !ok || entry.Kind != KindSemaphore {
		c.Regs[0] = ResultInvalidHandle
		return
	}
	prev := int32(0)
	if obj, ok := k.SyncObjects[entry.ID]; ok {
		prev = obj.Count
	}
	threadID := k.CurrentThreadID()
	for i := int32(0); i < count; i++ {
		k.ReleaseSync(entry.ID, threadID)
	}
	c.Regs[1] = uint32(prev)
	c.Regs[0] = ResultSuccess
}

func svcCreateEvent(c *cpu.CPU, k *Kernel) {
	var resetType ResetType
	switch c.Regs[1] {
	case 0:
		resetType = ResetOneShot
	case 1:
		resetType = ResetSticky
	default:
		resetType = ResetPulse
	}
	id := k.AllocSyncID()
	k.SyncObjects[id] = newEvent(resetType)
	handle := k.AllocateHandle(HandleEntry{Kind: KindEvent, ID: id})
	c.Regs[1] = handle
	c.Regs[0] = ResultSuccess
}

func svcSignalEvent(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[0]
	entry, ok := k.GetHandle(handle)
	if !ok || entry.Kind != KindEvent {
		c.Regs[0] = ResultInvalidHandle
		return
	}
	k.ReleaseSync(entry.ID, 0)
	c.Regs[0] = ResultSuccess
}

func svcClearEvent(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[0]
	entry, ok := k.GetHandle(handle)
	if !ok || entry.Kind != KindEvent {
		c.Regs[0] = ResultInvalidHandle
		return
	}
	k.ClearSync(entry.ID)
	c.Regs[0] = ResultSuccess
}

func svcCreateTimer(c *cpu.CPU, k *Kernel) {
	handle := k.AllocateHandle(HandleEntry{Kind: KindTimer})
	c.Regs[1] = handle
	c.Regs[0] = ResultSuccess
}

func svcCreateMemoryBlock(c *cpu.CPU, k *Kernel, mem *memory.Memory) {
	addr := c.Regs[1]
	size := c.Regs[2]
	base := addr
	if addr == 0 {
		allocSize := size
		if allocSize < 0x1000 {
			allocSize = 0x1000
		}
		base = mem.AllocHeap(allocSize)
	}
	handle := k.AllocateHandle(HandleEntry{Kind: KindSharedMemory, SharedMemBase: base, SharedMemSize: size})
	c.Regs[1] = handle
	c.Regs[0] = ResultSuccess
}

func svcMapMemoryBlock(c *cpu.CPU) {
	c.Regs[0] = ResultSuccess
}

func svcCloseHandle(c *cpu.CPU, k *Kernel) {
	k.CloseHandle(c.Regs[0])
	c.Regs[0] = ResultSuccess
}

func svcWaitSynchronization1(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[0]

	entry, ok := k.GetHandle(handle)
	if !ok {
		c.Regs[0] = ResultSuccess
		return
	}

	switch entry.Kind {
	case KindSession, KindTimer, KindThread:
		c.Regs[0] = ResultSuccess
		return
	case KindSharedMemory, KindPort, KindProcess:
		c.Regs[0] = ResultSuccess
		return
	}

	if k.CurrentThread >= len(k.Threads) {
		c.Regs[0] = ResultSuccess
		return
	}
	threadID := k.Threads[k.CurrentThread].ID

	result, ok := k.AcquireSync(entry.ID, threadID)
	if !ok {
		c.Regs[0] = ResultInvalidHandle
		return
	}

	switch result {
	case AcquireSuccess:
		c.Regs[0] = ResultSuccess
	case AcquireWouldBlock:
		var kind WaitKind
		switch entry.Kind {
		case KindMutex:
			kind = WaitMutex
		case KindSemaphore:
			kind = WaitSemaphore
		case KindEvent:
			kind = WaitEvent
		}
		k.Threads[k.CurrentThread].Suspend(WaitReason{Kind: kind, Handle: handle})
		c.Regs[0] = ResultSuccess
		k.NeedsReschedule = true
	}
}

func svcWaitSynchronizationN(c *cpu.CPU, mem *memory.Memory, k *Kernel) {
	handlesPtr := c.Regs[1]
	count := c.Regs[2]

	for i := uint32(0); i < count; i++ {
		handle := mem.Read32(handlesPtr + i*4)

		entry, ok := k.GetHandle(handle)
		if !ok {
			continue
		}
		switch entry.Kind {
		case KindSession, KindTimer, KindThread:
			c.Regs[1] = i
			c.Regs[0] = ResultSuccess
			return
		}
		if entry.Kind != KindMutex && entry.Kind != KindSemaphore && entry.Kind != KindEvent {
			continue
		}
		if k.CurrentThread >= len(k.Threads) {
			continue
		}
		threadID := k.Threads[k.CurrentThread].ID
		if result, ok := k.AcquireSync(entry.ID, threadID); ok && result == AcquireSuccess {
			c.Regs[1] = i
			c.Regs[0] = ResultSuccess
			return
		}
	}

	if k.CurrentThread < len(k.Threads) {
		k.Threads[k.CurrentThread].Suspend(WaitReason{Kind: WaitSyncMultiple})
		k.NeedsReschedule = true
	}
	c.Regs[1] = 0
	c.Regs[0] = ResultSuccess
}

func svcDuplicateHandle(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[1]
	entry, ok := k.GetHandle(handle)
	if !ok {
		c.Regs[0] = ResultInvalidHandle
		return
	}
	newHandle := k.AllocateHandle(entry)
	c.Regs[1] = newHandle
	c.Regs[0] = ResultSuccess
}

func svcGetSystemTick(c *cpu.CPU) {
	ticks := c.Cycles
	c.Regs[0] = uint32(ticks)
	c.Regs[1] = uint32(ticks >> 32)
}

func svcConnectToPort(c *cpu.CPU, mem *memory.Memory, k *Kernel) {
	namePtr := c.Regs[1]
	var nameBytes []byte
	for i := uint32(0); i < 12; i++ {
		b := mem.Read8(namePtr + i)
		if b == 0 {
			break
		}
		nameBytes = append(nameBytes, b)
	}
	name := string(nameBytes)

	if handle, ok := k.ConnectToPort(name); ok {
		c.Regs[1] = handle
		c.Regs[0] = ResultSuccess
		return
	}
	k.LastConnectFail = name
	c.Regs[0] = ResultNotFound
}

func svcSendSyncRequest(c *cpu.CPU) {
	c.Regs[0] = ResultSuccess
}

func svcGetProcessID(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[1]
	if handle == PseudoHandleCurrentProcess {
		if k.CurrentThread < len(k.Threads) {
			c.Regs[1] = k.Threads[k.CurrentThread].ProcessID
		} else {
			c.Regs[1] = 1
		}
		c.Regs[0] = ResultSuccess
		return
	}
	entry, ok := k.GetHandle(handle)
	if ok && entry.Kind == KindProcess {
		c.Regs[1] = entry.ID
		c.Regs[0] = ResultSuccess
		return
	}
	if k.CurrentThread < len(k.Threads) {
		c.Regs[1] = k.Threads[k.CurrentThread].ProcessID
		c.Regs[0] = ResultSuccess
	} else {
		c.Regs[0] = ResultInvalidHandle
	}
}

func svcGetThreadID(c *cpu.CPU, k *Kernel) {
	handle := c.Regs[1]
	if handle == PseudoHandleCurrentThread {
		if k.CurrentThread < len(k.Threads) {
			c.Regs[1] = k.Threads[k.CurrentThread].ID
		} else {
			c.Regs[1] = 0
		}
		c.Regs[0] = ResultSuccess
		return
	}
	entry, ok := k.GetHandle(handle)
	if ok && entry.Kind == KindThread {
		c.Regs[1] = entry.ID
		c.Regs[0] = ResultSuccess
		return
	}
	if k.CurrentThread < len(k.Threads) {
		c.Regs[1] = k.Threads[k.CurrentThread].ID
		c.Regs[0] = ResultSuccess
	} else {
		c.Regs[0] = ResultInvalidHandle
	}
}

func svcGetResourceLimit(c *cpu.CPU, k *Kernel) {
	handle := k.AllocateHandle(HandleEntry{Kind: KindProcess, ID: 1})
	c.Regs[1] = handle
	c.Regs[0] = ResultSuccess
}

func svcGetResourceLimitValues(c *cpu.CPU, mem *memory.Memory) {
	valuesPtr := c.Regs[0]
	namesPtr := c.Regs[2]
	count := c.Regs[3]
	for i := uint32(0); i < count; i++ {
		_ = mem.Read32(namesPtr + i*4)
		mem.Write32(valuesPtr+i*8, 0x1000)
		mem.Write32(valuesPtr+i*8+4, 0)
	}
	c.Regs[0] = ResultSuccess
}

// svcOutputDebugString only sets the result code; reading the string
// itself and surfacing it to the guest-debug log happens in runtime's
// handleSVC, which has a Logger and can still see the pre-dispatch R0
// (pointer) and R1 (length) this handler leaves untouched.
func svcOutputDebugString(c *cpu.CPU) {
	c.Regs[0] = ResultSuccess
}

func svcBreak(c *cpu.CPU, k *Kernel) {
	if k.CurrentThread < len(k.Threads) {
		k.Threads[k.CurrentThread].Kill()
	}
	c.Halted = true
	c.Regs[0] = ResultSuccess
}
