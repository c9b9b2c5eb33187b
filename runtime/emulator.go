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

// Package runtime orchestrates the CPU interpreter, the HLE kernel,
// and the system-module handlers into a running console: loading a
// 3DSX, stepping the interpreter frame by frame, and routing SVCs and
// IPC to the kernel and services packages.
package runtime

import (
	"fmt"

	"github.com/citrine3ds/citrine3ds/cpu"
	"github.com/citrine3ds/citrine3ds/emulation"
	"github.com/citrine3ds/citrine3ds/environment"
	"github.com/citrine3ds/citrine3ds/hw"
	"github.com/citrine3ds/citrine3ds/ipc"
	"github.com/citrine3ds/citrine3ds/kernel"
	"github.com/citrine3ds/citrine3ds/loader"
	"github.com/citrine3ds/citrine3ds/logger"
	"github.com/citrine3ds/citrine3ds/memory"
	"github.com/citrine3ds/citrine3ds/services"
)

// debugStringLogSize bounds how many svcOutputDebugString calls the
// guest-debug logger retains.
const debugStringLogSize = 128

// Frame timing, grounded on emulator.rs's local constants.
const (
	CyclesPerFrame  = 4_468_531
	TimesliceCycles = 100_000
	SleepTickNS     = 16_666_667
)

const stackSize = 0x1_0000 // 64 KiB, ctrulib's default main-thread stack

// svcLogEntry is one dispatched SVC, kept for the debug monitor's
// trace view.
type svcLogEntry struct {
	num   uint32
	inR0  uint32
	outR0 uint32
}

// ipcLogEntry is one routed IPC command.
type ipcLogEntry struct {
	service   string
	commandID uint16
}

// traceLogEntry is one decoded instruction.
type traceLogEntry struct {
	pc    uint32
	instr uint32
	thumb bool
}

const logCapacity = 32

// ringPush appends v to log, dropping the oldest entry once log
// reaches logCapacity.
func ringPush[T any](log []T, v T) []T {
	log = append(log, v)
	if len(log) > logCapacity {
		log = log[len(log)-logCapacity:]
	}
	return log
}

var _ emulation.Runtime = (*Emulator)(nil)

// Emulator bundles every subsystem needed to run a loaded 3DSX: the
// CPU core, guest memory, the HLE kernel and its system-module
// handlers, and the peripherals ticked once per frame.
type Emulator struct {
	CPU      *cpu.CPU
	Mem      *memory.Memory
	Kernel   *kernel.Kernel
	Services *services.ServiceManager
	HW       *hw.Hardware
	Env      *environment.Environment
	Logger   *logger.Logger

	Running bool

	state emulation.State

	svcLog   []svcLogEntry
	ipcLog   []ipcLogEntry
	traceLog []traceLogEntry

	sliceStart     uint64
	lastFailedPort string
}

// State reports the orchestrator's lifecycle state. Implements
// emulation.Runtime, so frontend and monitor code can depend on that
// narrow interface instead of the full Emulator.
func (e *Emulator) State() emulation.State {
	return e.state
}

// Pause sets or clears the orchestrator's paused state. While paused,
// RunFrame is a no-op; Step still single-steps regardless, the same
// way a real debugger's step command ignores a separate pause flag.
func (e *Emulator) Pause(set bool) {
	if set {
		e.state = emulation.Paused
		return
	}
	if e.Running {
		e.state = emulation.Running
	}
}

// SetFeature dispatches a frontend feature request onto the
// orchestrator. Returns an error naming the request if it is
// unsupported or carries a value of the wrong type.
func (e *Emulator) SetFeature(req emulation.FeatureReq, data emulation.FeatureReqData) error {
	switch req {
	case emulation.ReqSetPause:
		v, ok := data.(bool)
		if !ok {
			return fmt.Errorf(emulation.UnsupportedEmulationFeature, req)
		}
		e.Pause(v)
	case emulation.ReqSetInput:
		v, ok := data.(uint32)
		if !ok {
			return fmt.Errorf(emulation.UnsupportedEmulationFeature, req)
		}
		e.SetButtons(v)
	default:
		return fmt.Errorf(emulation.UnsupportedEmulationFeature, req)
	}
	return nil
}

// New constructs a fresh emulator with no program loaded. Kernel
// objects and ports that every boot sequence expects to exist are
// pre-created by services.New.
func New() *Emulator {
	k := kernel.New()
	mem := memory.New()
	return &Emulator{
		CPU:      cpu.New(),
		Mem:      mem,
		Kernel:   k,
		Services: services.New(k, mem),
		HW:       hw.New(),
		Env:      environment.NewEnvironment(environment.MainEmulation),
		Logger:   logger.NewLogger(debugStringLogSize),
		state:    emulation.Initialising,
	}
}

// Load3DSX parses and places a 3DSX image at the standard code base,
// creates its main thread, and switches the CPU onto it. Returns
// false on a malformed image, leaving the emulator unchanged.
func (e *Emulator) Load3DSX(data []byte) bool {
	entry, ok := loader.Load(data, e.Mem, memory.VAddrCodeBase)
	if !ok {
		return false
	}

	pid := e.Kernel.NextProcessID
	e.Kernel.NextProcessID++
	tid := e.Kernel.AllocThreadID()

	stackBase := e.Mem.AllocHeap(stackSize)
	stackTop := stackBase + stackSize

	thread := kernel.NewThread(tid, pid, entry, stackTop, 0x30, memory.VAddrTLSBase)
	e.Kernel.Threads = append(e.Kernel.Threads, thread)
	e.Kernel.CurrentThread = 0
	thread.State = kernel.ThreadRunning

	e.CPU.SwitchMode(cpu.ModeSYS)
	e.CPU.CPSR &^= cpu.FlagI | cpu.FlagF
	e.CPU.SetPC(entry)
	e.CPU.Regs[13] = stackTop
	// SetTLSBase programs both thread-ID registers directly; it does
	// not go through CP15.Write, whose opc2 switch has no case for
	// the c13,c0,3 register ctrulib's __ctru_thread_pointer reads.
	e.CPU.SetTLSBase(memory.VAddrTLSBase)
	e.Running = true
	e.state = emulation.Running
	return true
}

// RunFrame advances the emulator by one video frame's worth of
// cycles: wakes expired sleepers, interprets until the cycle target
// or a halt, preempts on time-slice boundaries, ticks hardware, and
// delivers the once-per-frame apt/gsp signals and HID state update.
func (e *Emulator) RunFrame() {
	if !e.Running || e.state == emulation.Paused {
		return
	}

	e.Kernel.WakeExpiredSleepers(SleepTickNS)

	target := e.CPU.Cycles + CyclesPerFrame
	e.sliceStart = e.CPU.Cycles

	for e.CPU.Cycles < target && e.Running {
		if e.CPU.Halted {
			e.Kernel.ContextSwitch(e.CPU)
			if e.CPU.Halted {
				e.CPU.Cycles = target
				break
			}
		}

		e.step()

		if e.CPU.Cycles-e.sliceStart >= TimesliceCycles {
			e.Kernel.Preempt(e.CPU)
			e.sliceStart = e.CPU.Cycles
		}
	}

	e.HW.Tick(CyclesPerFrame)

	e.Kernel.SignalEventHandle(e.Services.AptSignalEvent)
	if e.Services.GspInterruptHandle != 0 {
		e.Kernel.SignalEventHandle(e.Services.GspInterruptHandle)
	}
	if e.Services.HidSharedMemAddr != 0 {
		services.UpdateSharedMemory(e.Mem, e.Services.HidSharedMemAddr, e.Services.Buttons)
	}
}

// Step executes exactly one instruction, for single-step debugging.
// Unlike RunFrame it does not wake sleepers, preempt on a time slice,
// or tick hardware; callers stepping for many instructions in a row
// should do so themselves if that matters to them.
func (e *Emulator) Step() {
	if !e.Running {
		return
	}
	if e.CPU.Halted {
		e.Kernel.ContextSwitch(e.CPU)
		return
	}
	e.step()
}

// step decodes and executes one instruction, accounting for the
// pipeline-PC illusion: the interpreter advances PC past the
// instruction before executing it, so a non-branching instruction
// must be corrected back down to pc+instructionSize afterward.
func (e *Emulator) step() {
	c := e.CPU
	pc := c.PC()

	if c.InThumbMode() {
		instr := e.Mem.Read16(pc)
		e.tracePush(pc, uint32(instr), true)
		c.SetPC(pc + 4)
		cycles := cpu.ExecuteThumb(instr, c, e.Mem)
		c.AddCycles(cycles)
		if c.PC() == pc+4 {
			c.SetPC(pc + 2)
		}
	} else {
		instr := e.Mem.Read32(pc)
		e.tracePush(pc, instr, false)
		c.SetPC(pc + 8)
		cycles := cpu.ExecuteARM(instr, c, e.Mem)
		c.AddCycles(cycles)
		if c.PC() == pc+8 {
			c.SetPC(pc + 4)
		}
	}

	if c.SVCPending {
		c.SVCPending = false
		e.handleSVC(c.SVCNumber)
	}

	if e.Kernel.NeedsReschedule {
		e.Kernel.NeedsReschedule = false
		e.Kernel.ContextSwitch(c)
	}
}

// handleSVC runs the kernel's dispatch table for svcNum, then handles
// the three SVCs the orchestrator itself cares about: ConnectToPort
// failures (recorded for the debug view), OutputDebugString (the
// string is written to Logger) and SendSyncRequest (routed to srv: or
// to the connected session's service handler).
func (e *Emulator) handleSVC(svcNum uint32) {
	c := e.CPU
	preR0 := c.Regs[0]
	preR1 := c.Regs[1]

	kernel.Dispatch(c, e.Mem, e.Kernel, svcNum)

	switch svcNum {
	case 0x2D: // ConnectToPort
		if c.Regs[0] != kernel.ResultSuccess {
			e.lastFailedPort = readPortName(e.Mem, preR1)
		}
	case 0x3C: // OutputDebugString
		msg := readDebugString(e.Mem, preR0, c.Regs[1])
		e.Logger.Log(e.Env, "svcOutputDebugString", msg)
	case 0x32: // SendSyncRequest
		if name, ok := e.Kernel.SessionService(preR0); ok {
			cmd := ipc.Parse(e.Mem)
			e.ipcLog = ringPush(e.ipcLog, ipcLogEntry{service: name, commandID: cmd.CommandID})
			if name == "srv:" {
				e.handleSrvIPC(cmd)
			} else {
				e.Services.HandleRequest(name, e.Mem)
			}
		}
	}

	e.svcLog = ringPush(e.svcLog, svcLogEntry{num: svcNum, inR0: preR0, outR0: c.Regs[0]})
}

// handleSrvIPC answers the srv: port itself: client registration,
// notification-semaphore enablement, and service-handle lookup by
// name via the kernel's port table.
func (e *Emulator) handleSrvIPC(cmd ipc.Command) {
	switch cmd.CommandID {
	case 0x0001: // RegisterClient
		ipc.WriteResponse(e.Mem, cmd.Header, kernel.ResultSuccess, nil)
	case 0x0002: // EnableNotification
		ipc.WriteResponse(e.Mem, cmd.Header, kernel.ResultSuccess, []uint32{e.Services.SrvNotifSemaphore})
	case 0x0005: // GetServiceHandle
		length := cmd.Param(2)
		if length > 8 {
			length = 8
		}
		var nameBytes []byte
		for i := uint32(0); i < 8 && uint32(len(nameBytes)) < length; i++ {
			var b byte
			if i < 4 {
				b = byte(cmd.Param(0) >> (8 * i))
			} else {
				b = byte(cmd.Param(1) >> (8 * (i - 4)))
			}
			if b == 0 {
				break
			}
			nameBytes = append(nameBytes, b)
		}
		name := string(nameBytes)

		if handle, ok := e.Kernel.ConnectToPort(name); ok {
			ipc.WriteResponse(e.Mem, cmd.Header, kernel.ResultSuccess, []uint32{handle})
		} else {
			ipc.WriteResponseRaw(e.Mem, []uint32{cmd.Header, kernel.ResultNotFound})
		}
	default:
		ipc.WriteResponse(e.Mem, cmd.Header, kernel.ResultSuccess, nil)
	}
}

func readDebugString(mem *memory.Memory, ptr uint32, length uint32) string {
	if length > 256 {
		length = 256
	}
	b := make([]byte, length)
	for i := uint32(0); i < length; i++ {
		b[i] = mem.Read8(ptr + i)
	}
	return string(b)
}

func readPortName(mem *memory.Memory, ptr uint32) string {
	var b []byte
	for i := uint32(0); i < 12; i++ {
		c := mem.Read8(ptr + i)
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}

func (e *Emulator) tracePush(pc, instr uint32, thumb bool) {
	e.traceLog = ringPush(e.traceLog, traceLogEntry{pc: pc, instr: instr, thumb: thumb})
}

// SetButtons records the host input state for hid's shared-memory
// update and GetPadState.
func (e *Emulator) SetButtons(buttons uint32) {
	e.Services.SetButtons(buttons)
}

// GetFBTop and GetFBBottom read back the framebuffers guest code most
// recently registered via gsp's SetBufferSwap.
func (e *Emulator) GetFBTop() []byte {
	return e.Mem.ReadBlock(e.Services.TopFBAddr, services.TopFBSize)
}

func (e *Emulator) GetFBBottom() []byte {
	return e.Mem.ReadBlock(e.Services.BotFBAddr, services.BotFBSize)
}

// Reset recreates every subsystem from scratch and clears all debug
// state, equivalent to power-cycling the console.
func (e *Emulator) Reset() {
	k := kernel.New()
	mem := memory.New()
	e.CPU = cpu.New()
	e.Mem = mem
	e.Kernel = k
	e.Services = services.New(k, mem)
	e.HW = hw.New()
	e.Logger.Clear()
	e.Running = false
	e.state = emulation.Initialising
	e.svcLog = nil
	e.ipcLog = nil
	e.traceLog = nil
	e.sliceStart = 0
	e.lastFailedPort = ""
}
