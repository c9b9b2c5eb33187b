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

// Package cpu implements ARM11 (ARMv6 + Thumb) register and processor
// state, a CP15 register file, and the decode-execute loop for both
// instruction sets.
package cpu

// Processor modes, as held in CPSR bits 0..4.
const (
	ModeUser = 0x10
	ModeFIQ  = 0x11
	ModeIRQ  = 0x12
	ModeSVC  = 0x13
	ModeABT  = 0x17
	ModeUND  = 0x1B
	ModeSYS  = 0x1F
)

// CPSR bit positions.
const (
	FlagN = 1 << 31
	FlagZ = 1 << 30
	FlagC = 1 << 29
	FlagV = 1 << 28
	FlagI = 1 << 7
	FlagF = 1 << 6
	FlagT = 1 << 5
)

// modeIndex maps a CPSR mode field onto an index into the six-slot
// banked-register arrays. USER and SYS share slot 0, matching the
// real register file (user mode has no privileged bank of its own).
func modeIndex(mode uint32) int {
	switch mode {
	case ModeFIQ:
		return 1
	case ModeIRQ:
		return 2
	case ModeSVC:
		return 3
	case ModeABT:
		return 4
	case ModeUND:
		return 5
	default: // ModeUser, ModeSYS
		return 0
	}
}

// bankedRegs holds every register that is banked per-mode: SP and LR
// for all six non-shared-user/sys banks, plus the separate FIQ and
// USER R8-R12 banks.
type bankedRegs struct {
	sp [6]uint32
	lr [6]uint32

	fiqR8R12 [5]uint32
	usrR8R12 [5]uint32
}

// CPU holds everything needed to execute one guest thread: the visible
// register file, status registers, cycle accounting, and the CP15
// coprocessor state.
type CPU struct {
	Regs [16]uint32
	CPSR uint32
	spsr [6]uint32

	banked bankedRegs

	Cycles uint64

	Halted     bool
	SVCPending bool
	SVCNumber  uint32

	CP15 CP15

	pendingTLS uint32
}

// New creates a CPU reset into SVC mode with interrupts masked, PC at
// the default code base, matching how the real console's bootrom
// leaves the core before handing control to the loaded program (the
// loader overwrites PC/SP once it knows the entry point).
func New() *CPU {
	c := &CPU{}
	c.Reset()
	return c
}

// Reset returns the CPU to its just-powered-on state.
func (c *CPU) Reset() {
	c.Regs = [16]uint32{}
	c.banked = bankedRegs{}
	c.spsr = [6]uint32{}
	c.CPSR = ModeSVC | FlagI | FlagF
	c.Regs[15] = 0x0010_0000
	c.Cycles = 0
	c.Halted = false
	c.SVCPending = false
	c.SVCNumber = 0
	c.CP15 = NewCP15()
}

// Mode returns the current processor mode.
func (c *CPU) Mode() uint32 {
	return c.CPSR & 0x1F
}

// InThumbMode reports whether the T bit is set.
func (c *CPU) InThumbMode() bool {
	return c.CPSR&FlagT != 0
}

// PC returns the raw program counter register, with no pipeline
// offset applied (the step loop is responsible for that illusion).
func (c *CPU) PC() uint32 {
	return c.Regs[15]
}

// SetPC sets the program counter register directly.
func (c *CPU) SetPC(addr uint32) {
	c.Regs[15] = addr
}

// SwitchMode performs the atomic bank swap described in spec.md §3:
// it is a no-op if old == new, otherwise it stores the old mode's
// SP/LR into its bank, swaps the FIQ/USER R8-R12 banks on entry to or
// exit from FIQ, loads the new mode's SP/LR, and rewrites CPSR's mode
// field.
func (c *CPU) SwitchMode(newMode uint32) {
	oldMode := c.Mode()
	if oldMode == newMode {
		return
	}

	oldIdx := modeIndex(oldMode)
	c.banked.sp[oldIdx] = c.Regs[13]
	c.banked.lr[oldIdx] = c.Regs[14]

	if oldMode == ModeFIQ && newMode != ModeFIQ {
		copy(c.banked.fiqR8R12[:], c.Regs[8:13])
		copy(c.Regs[8:13], c.banked.usrR8R12[:])
	} else if oldMode != ModeFIQ && newMode == ModeFIQ {
		copy(c.banked.usrR8R12[:], c.Regs[8:13])
		copy(c.Regs[8:13], c.banked.fiqR8R12[:])
	}

	newIdx := modeIndex(newMode)
	c.Regs[13] = c.banked.sp[newIdx]
	c.Regs[14] = c.banked.lr[newIdx]

	c.CPSR = (c.CPSR &^ 0x1F) | newMode
}

// SPSR returns the saved program status register for the current
// mode. User and system mode have no SPSR of their own; reading it
// there returns 0, matching unpredictable-but-harmless hardware
// behavior.
func (c *CPU) SPSR() uint32 {
	mode := c.Mode()
	if mode == ModeUser || mode == ModeSYS {
		return 0
	}
	return c.spsr[modeIndex(mode)]
}

// SetSPSR writes the saved program status register for the current
// mode.
func (c *CPU) SetSPSR(v uint32) {
	mode := c.Mode()
	if mode == ModeUser || mode == ModeSYS {
		return
	}
	c.spsr[modeIndex(mode)] = v
}

// TLSBase returns the thread-local-storage base address most recently
// programmed via CP15's thread-ID registers.
func (c *CPU) TLSBase() uint32 {
	return c.CP15.ThreadIDUser
}

// SetTLSBase programs both the user-visible and privileged thread-ID
// registers, mirroring what the kernel does when it switches threads.
func (c *CPU) SetTLSBase(addr uint32) {
	c.CP15.ThreadIDUser = addr
	c.CP15.ThreadIDPriv = addr
}

// AddCycles advances the cycle counter.
func (c *CPU) AddCycles(n uint64) {
	c.Cycles += n
}

// Snapshot is a saved copy of every register the scheduler needs to
// restore when a thread is rescheduled onto the CPU.
type Snapshot struct {
	Regs   [16]uint32
	CPSR   uint32
	spsr   [6]uint32
	banked bankedRegs
	CP15   CP15
}

// Save captures the CPU's full visible state.
func (c *CPU) Save() Snapshot {
	return Snapshot{
		Regs:   c.Regs,
		CPSR:   c.CPSR,
		spsr:   c.spsr,
		banked: c.banked,
		CP15:   c.CP15,
	}
}

// Restore installs a previously saved snapshot.
func (c *CPU) Restore(s Snapshot) {
	c.Regs = s.Regs
	c.CPSR = s.CPSR
	c.spsr = s.spsr
	c.banked = s.banked
	c.CP15 = s.CP15
}
