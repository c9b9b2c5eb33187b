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

// Package services implements the HLE system-module handlers that
// answer IPC requests sent to ports connected via srv:. Most ports
// are full handlers (apt, gsp, hid, fs, dsp); the rest are stubs that
// exist only so ConnectToPort succeeds and unhandled commands get a
// harmless zero-value response.
package services

import (
	"github.com/citrine3ds/citrine3ds/ipc"
	"github.com/citrine3ds/citrine3ds/kernel"
	"github.com/citrine3ds/citrine3ds/memory"
)

// StubPorts lists every service port that exists only to satisfy
// ConnectToPort and otherwise answers every command with a bare
// zero-result response. Real guest software mostly probes these at
// startup and never depends on their behavior beyond "it connected".
var StubPorts = []string{
	"cfg:u", "cfg:s", "ndm:u", "ac:u", "am:net", "ptm:u", "ptm:sysm",
	"ns:s", "y2r:u", "ldr:ro", "ir:USER", "ir:u", "csnd:SND", "cam:u", "err:f",
}

// HandledPorts lists the ports ServiceManager dispatches to a real
// handler.
var HandledPorts = []string{"apt:U", "apt:S", "gsp::Gpu", "hid:USER", "fs:USER", "dsp::DSP"}

// ServiceManager holds every piece of cross-call state the system
// module handlers share: handles pre-created at boot, and the guest
// input/output state (buttons, framebuffer addresses) the runtime
// orchestrator feeds in and reads back out every frame.
type ServiceManager struct {
	AptInitialized    bool
	GspRightsAcquired bool

	AptLockHandle      uint32
	AptSignalEvent     uint32
	AptResumeEvent     uint32
	GspInterruptHandle uint32
	GspSharedMemHandle uint32
	HidSharedMemHandle uint32
	HidPadEvent        uint32
	SrvNotifSemaphore  uint32

	HidSharedMemAddr uint32
	GspSharedMemAddr uint32

	Buttons   uint32
	TopFBAddr uint32
	BotFBAddr uint32
}

// New creates a ServiceManager and pre-creates the kernel objects
// every real 3DS boot sequence expects to exist before a title's
// first service call: the apt lock mutex, apt's signal/resume
// events (signal pre-signaled, matching the real applet already
// being "ready" on a freshly booted console), the gsp interrupt
// event, srv:'s notification semaphore, and the hid/gsp shared
// memory blocks. It also registers every port named in HandledPorts
// and StubPorts plus srv: itself.
func New(k *kernel.Kernel, mem *memory.Memory) *ServiceManager {
	sm := &ServiceManager{}

	aptLockID := k.AllocSyncID()
	k.SyncObjects[aptLockID] = &kernel.SyncObject{Kind: kernel.SyncMutex}
	sm.AptLockHandle = k.AllocateHandle(kernel.HandleEntry{Kind: kernel.KindMutex, ID: aptLockID})

	aptSignalID := k.AllocSyncID()
	k.SyncObjects[aptSignalID] = &kernel.SyncObject{Kind: kernel.SyncEvent, ResetType: kernel.ResetOneShot}
	sm.AptSignalEvent = k.AllocateHandle(kernel.HandleEntry{Kind: kernel.KindEvent, ID: aptSignalID})

	aptResumeID := k.AllocSyncID()
	k.SyncObjects[aptResumeID] = &kernel.SyncObject{Kind: kernel.SyncEvent, ResetType: kernel.ResetOneShot}
	sm.AptResumeEvent = k.AllocateHandle(kernel.HandleEntry{Kind: kernel.KindEvent, ID: aptResumeID})

	k.SignalEventHandle(sm.AptSignalEvent)

	gspInterruptID := k.AllocSyncID()
	k.SyncObjects[gspInterruptID] = &kernel.SyncObject{Kind: kernel.SyncEvent, ResetType: kernel.ResetOneShot}
	sm.GspInterruptHandle = k.AllocateHandle(kernel.HandleEntry{Kind: kernel.KindEvent, ID: gspInterruptID})

	srvSemID := k.AllocSyncID()
	k.SyncObjects[srvSemID] = &kernel.SyncObject{Kind: kernel.SyncSemaphore, Count: 0, MaxCount: 1}
	sm.SrvNotifSemaphore = k.AllocateHandle(kernel.HandleEntry{Kind: kernel.KindSemaphore, ID: srvSemID})

	sm.HidSharedMemAddr = mem.AllocHeap(HidSharedMemSize)
	sm.HidSharedMemHandle = k.AllocateHandle(kernel.HandleEntry{
		Kind: kernel.KindSharedMemory, SharedMemBase: sm.HidSharedMemAddr, SharedMemSize: HidSharedMemSize,
	})
	hidPadEventID := k.AllocSyncID()
	k.SyncObjects[hidPadEventID] = &kernel.SyncObject{Kind: kernel.SyncEvent, ResetType: kernel.ResetPulse}
	sm.HidPadEvent = k.AllocateHandle(kernel.HandleEntry{Kind: kernel.KindEvent, ID: hidPadEventID})

	sm.GspSharedMemAddr = mem.AllocHeap(0x1000)
	sm.GspSharedMemHandle = k.AllocateHandle(kernel.HandleEntry{
		Kind: kernel.KindSharedMemory, SharedMemBase: sm.GspSharedMemAddr, SharedMemSize: 0x1000,
	})

	k.RegisterPort("srv:")
	for _, name := range HandledPorts {
		k.RegisterPort(name)
	}
	for _, name := range StubPorts {
		k.RegisterPort(name)
	}

	return sm
}

// HandleRequest parses the command buffer and routes it to the
// handler for serviceName, or writes a bare zero-result response if
// the port has no real handler (every stub port, and any name that
// somehow reached here unhandled).
func (sm *ServiceManager) HandleRequest(serviceName string, mem ipc.Bus) {
	cmd := ipc.Parse(mem)
	switch serviceName {
	case "apt:U", "apt:S":
		handleApt(cmd, mem, sm)
	case "gsp::Gpu":
		handleGsp(cmd, mem, sm)
	case "hid:USER":
		handleHid(cmd, mem, sm)
	case "fs:USER":
		handleFs(cmd, mem, sm)
	case "dsp::DSP":
		handleDsp(cmd, mem, sm)
	default:
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	}
}

// SetButtons records the host input state the runtime orchestrator
// polled this frame, for hid's shared-memory update and GetPadState.
func (sm *ServiceManager) SetButtons(buttons uint32) {
	sm.Buttons = buttons
}
