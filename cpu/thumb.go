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

package cpu

import "math/bits"

// ExecuteThumb decodes and executes one 16-bit Thumb instruction
// against the 19 canonical formats. As with ExecuteARM, the caller is
// responsible for the pipeline-ahead PC illusion (+4 for Thumb).
// Thumb has no condition field of its own except format 16
// (conditional branch); every other format always executes.
func ExecuteThumb(instr uint16, c *CPU, mem Bus) uint64 {
	switch {
	case instr&0xF800 == 0x1800: // format 2: add/subtract
		return thumbAddSub(instr, c)
	case instr&0xE000 == 0x0000: // format 1: move shifted register
		return thumbShift(instr, c)
	case instr&0xE000 == 0x2000: // format 3: move/compare/add/subtract immediate
		return thumbImmOp(instr, c)
	case instr&0xFC00 == 0x4000: // format 4: ALU operations
		return thumbALU(instr, c)
	case instr&0xFC00 == 0x4400: // format 5: hi register ops / BX
		return thumbHiReg(instr, c)
	case instr&0xF800 == 0x4800: // format 6: PC-relative load
		return thumbPCRelLoad(instr, c, mem)
	case instr&0xF200 == 0x5000: // format 7: load/store register offset
		return thumbLoadStoreReg(instr, c, mem)
	case instr&0xF200 == 0x5200: // format 8: load/store sign-extended byte/halfword
		return thumbLoadStoreSigned(instr, c, mem)
	case instr&0xE000 == 0x6000: // format 9: load/store immediate offset
		return thumbLoadStoreImm(instr, c, mem)
	case instr&0xF000 == 0x8000: // format 10: load/store halfword
		return thumbLoadStoreHalf(instr, c, mem)
	case instr&0xF000 == 0x9000: // format 11: SP-relative load/store
		return thumbSPRelLoadStore(instr, c, mem)
	case instr&0xF000 == 0xA000: // format 12: load address
		return thumbLoadAddress(instr, c)
	case instr&0xFF00 == 0xB000: // format 13: add offset to SP
		return thumbAddOffsetSP(instr, c)
	case instr&0xF600 == 0xB400: // format 14: push/pop registers
		return thumbPushPop(instr, c, mem)
	case instr&0xF000 == 0xC000: // format 15: multiple load/store
		return thumbMultipleLoadStore(instr, c, mem)
	case instr&0xFF00 == 0xDF00: // format 17: software interrupt
		return thumbSVC(instr, c)
	case instr&0xF000 == 0xD000: // format 16: conditional branch
		return thumbCondBranch(instr, c)
	case instr&0xF800 == 0xE000: // format 18: unconditional branch
		return thumbUncondBranch(instr, c)
	case instr&0xF000 == 0xF000: // format 19: long branch with link
		return thumbLongBranchLink(instr, c)
	default:
		return 1
	}
}

func thumbShift(instr uint16, c *CPU) uint64 {
	op := (instr >> 11) & 0x3
	amount := uint8((instr >> 6) & 0x1F)
	rs := (instr >> 3) & 0x7
	rd := instr & 0x7

	var shiftType ShiftType
	switch op {
	case 0:
		shiftType = ShiftLSL
	case 1:
		shiftType = ShiftLSR
	case 2:
		shiftType = ShiftASR
	}

	result, carry := shift(c.Regs[rs], shiftType, amount, c.flagC(), true)
	c.Regs[rd] = result
	c.setNZ(result)
	c.setFlag(FlagC, carry)
	return 1
}

func thumbAddSub(instr uint16, c *CPU) uint64 {
	immFlag := instr&0x0400 != 0
	subtract := instr&0x0200 != 0
	rnOrImm := uint32((instr >> 6) & 0x7)
	rs := (instr >> 3) & 0x7
	rd := instr & 0x7

	var operand uint32
	if immFlag {
		operand = rnOrImm
	} else {
		operand = c.Regs[rnOrImm]
	}

	var result uint32
	var carry, overflow bool
	if subtract {
		result, carry, overflow = subWithFlags(c.Regs[rs], operand, 0)
	} else {
		result, carry, overflow = addWithFlags(c.Regs[rs], operand, 0)
	}
	c.Regs[rd] = result
	c.setNZ(result)
	c.setFlag(FlagC, carry)
	c.setFlag(FlagV, overflow)
	return 1
}

func thumbImmOp(instr uint16, c *CPU) uint64 {
	op := (instr >> 11) & 0x3
	rd := (instr >> 8) & 0x7
	imm := uint32(instr & 0xFF)

	switch op {
	case 0: // MOV
		c.Regs[rd] = imm
		c.setNZ(imm)
		c.setFlag(FlagC, c.flagC())
	case 1: // CMP
		result, carry, overflow := subWithFlags(c.Regs[rd], imm, 0)
		c.setNZ(result)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	case 2: // ADD
		result, carry, overflow := addWithFlags(c.Regs[rd], imm, 0)
		c.Regs[rd] = result
		c.setNZ(result)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	case 3: // SUB
		result, carry, overflow := subWithFlags(c.Regs[rd], imm, 0)
		c.Regs[rd] = result
		c.setNZ(result)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	}
	return 1
}

func thumbALU(instr uint16, c *CPU) uint64 {
	op := (instr >> 6) & 0xF
	rs := (instr >> 3) & 0x7
	rd := instr & 0x7

	a := c.Regs[rd]
	b := c.Regs[rs]
	var result uint32
	var carry, overflow bool
	writesResult := true

	switch op {
	case 0x0: // AND
		result = a & b
	case 0x1: // EOR
		result = a ^ b
	case 0x2: // LSL
		result, carry = shift(a, ShiftLSL, uint8(b&0xFF), c.flagC(), false)
		c.setFlag(FlagC, carry)
	case 0x3: // LSR
		result, carry = shift(a, ShiftLSR, uint8(b&0xFF), c.flagC(), false)
		c.setFlag(FlagC, carry)
	case 0x4: // ASR
		result, carry = shift(a, ShiftASR, uint8(b&0xFF), c.flagC(), false)
		c.setFlag(FlagC, carry)
	case 0x5: // ADC
		ci := uint32(0)
		if c.flagC() {
			ci = 1
		}
		result, carry, overflow = addWithFlags(a, b, ci)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	case 0x6: // SBC
		bi := uint32(1)
		if c.flagC() {
			bi = 0
		}
		result, carry, overflow = subWithFlags(a, b, bi)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	case 0x7: // ROR
		result, carry = shift(a, ShiftROR, uint8(b&0xFF), c.flagC(), false)
		c.setFlag(FlagC, carry)
	case 0x8: // TST
		result = a & b
		writesResult = false
	case 0x9: // NEG
		result, carry, overflow = subWithFlags(0, b, 0)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	case 0xA: // CMP
		result, carry, overflow = subWithFlags(a, b, 0)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
		writesResult = false
	case 0xB: // CMN
		result, carry, overflow = addWithFlags(a, b, 0)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
		writesResult = false
	case 0xC: // ORR
		result = a | b
	case 0xD: // MUL
		result = a * b
	case 0xE: // BIC
		result = a &^ b
	case 0xF: // MVN
		result = ^b
	}

	if writesResult {
		c.Regs[rd] = result
	}
	c.setNZ(result)
	return 1
}

func thumbHiReg(instr uint16, c *CPU) uint64 {
	op := (instr >> 8) & 0x3
	h1 := instr&0x80 != 0
	h2 := instr&0x40 != 0
	rs := uint32((instr >> 3) & 0x7)
	if h2 {
		rs += 8
	}
	rd := uint32(instr & 0x7)
	if h1 {
		rd += 8
	}

	switch op {
	case 0: // ADD
		c.Regs[rd] += c.Regs[rs]
		if rd == 15 {
			c.Regs[15] &^= 1
		}
	case 1: // CMP
		result, carry, overflow := subWithFlags(c.Regs[rd], c.Regs[rs], 0)
		c.setNZ(result)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	case 2: // MOV
		c.Regs[rd] = c.Regs[rs]
		if rd == 15 {
			c.Regs[15] &^= 1
		}
	case 3: // BX / BLX
		link := h1
		return execBX(uint32(rs), c, link)
	}
	return 1
}

func thumbPCRelLoad(instr uint16, c *CPU, mem Bus) uint64 {
	rd := (instr >> 8) & 0x7
	imm := uint32(instr&0xFF) << 2
	base := (c.Regs[15] &^ 3) + imm
	c.Regs[rd] = mem.Read32(base)
	return 3
}

func thumbLoadStoreReg(instr uint16, c *CPU, mem Bus) uint64 {
	load := instr&0x0800 != 0
	byteOp := instr&0x0400 != 0
	ro := (instr >> 6) & 0x7
	rb := (instr >> 3) & 0x7
	rd := instr & 0x7

	addr := c.Regs[rb] + c.Regs[ro]
	if load {
		if byteOp {
			c.Regs[rd] = uint32(mem.Read8(addr))
		} else {
			c.Regs[rd] = mem.Read32(addr)
		}
		return 3
	}
	if byteOp {
		mem.Write8(addr, byte(c.Regs[rd]))
	} else {
		mem.Write32(addr, c.Regs[rd])
	}
	return 2
}

func thumbLoadStoreSigned(instr uint16, c *CPU, mem Bus) uint64 {
	hFlag := instr&0x0800 != 0
	signFlag := instr&0x0400 != 0
	ro := (instr >> 6) & 0x7
	rb := (instr >> 3) & 0x7
	rd := instr & 0x7

	addr := c.Regs[rb] + c.Regs[ro]

	switch {
	case !signFlag && !hFlag: // STRH
		mem.Write16(addr, uint16(c.Regs[rd]))
		return 2
	case !signFlag && hFlag: // LDRH
		c.Regs[rd] = uint32(mem.Read16(addr))
	case signFlag && !hFlag: // LDSB
		c.Regs[rd] = uint32(int32(int8(mem.Read8(addr))))
	default: // LDSH
		c.Regs[rd] = uint32(int32(int16(mem.Read16(addr))))
	}
	return 3
}

func thumbLoadStoreImm(instr uint16, c *CPU, mem Bus) uint64 {
	byteOp := instr&0x1000 != 0
	load := instr&0x0800 != 0
	imm := uint32((instr >> 6) & 0x1F)
	rb := (instr >> 3) & 0x7
	rd := instr & 0x7

	var addr uint32
	if byteOp {
		addr = c.Regs[rb] + imm
	} else {
		addr = c.Regs[rb] + imm*4
	}

	if load {
		if byteOp {
			c.Regs[rd] = uint32(mem.Read8(addr))
		} else {
			c.Regs[rd] = mem.Read32(addr)
		}
		return 3
	}
	if byteOp {
		mem.Write8(addr, byte(c.Regs[rd]))
	} else {
		mem.Write32(addr, c.Regs[rd])
	}
	return 2
}

func thumbLoadStoreHalf(instr uint16, c *CPU, mem Bus) uint64 {
	load := instr&0x0800 != 0
	imm := uint32((instr>>6)&0x1F) * 2
	rb := (instr >> 3) & 0x7
	rd := instr & 0x7

	addr := c.Regs[rb] + imm
	if load {
		c.Regs[rd] = uint32(mem.Read16(addr))
		return 3
	}
	mem.Write16(addr, uint16(c.Regs[rd]))
	return 2
}

func thumbSPRelLoadStore(instr uint16, c *CPU, mem Bus) uint64 {
	load := instr&0x0800 != 0
	rd := (instr >> 8) & 0x7
	imm := uint32(instr&0xFF) << 2

	addr := c.Regs[13] + imm
	if load {
		c.Regs[rd] = mem.Read32(addr)
		return 3
	}
	mem.Write32(addr, c.Regs[rd])
	return 2
}

func thumbLoadAddress(instr uint16, c *CPU) uint64 {
	spSource := instr&0x0800 != 0
	rd := (instr >> 8) & 0x7
	imm := uint32(instr&0xFF) << 2

	if spSource {
		c.Regs[rd] = c.Regs[13] + imm
	} else {
		c.Regs[rd] = (c.Regs[15] &^ 3) + imm
	}
	return 1
}

func thumbAddOffsetSP(instr uint16, c *CPU) uint64 {
	negative := instr&0x80 != 0
	imm := uint32(instr&0x7F) << 2
	if negative {
		c.Regs[13] -= imm
	} else {
		c.Regs[13] += imm
	}
	return 1
}

func thumbPushPop(instr uint16, c *CPU, mem Bus) uint64 {
	load := instr&0x0800 != 0
	pclrFlag := instr&0x0100 != 0
	list := instr & 0xFF

	count := bits.OnesCount16(list)
	if pclrFlag {
		count++
	}

	if load { // POP
		addr := c.Regs[13]
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) == 0 {
				continue
			}
			c.Regs[i] = mem.Read32(addr)
			addr += 4
		}
		if pclrFlag {
			v := mem.Read32(addr)
			c.setFlag(FlagT, v&1 != 0)
			c.Regs[15] = v &^ 1
			addr += 4
		}
		c.Regs[13] = addr
		return uint64(count) + 2
	}

	// PUSH
	addr := c.Regs[13] - uint32(count)*4
	start := addr
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) == 0 {
			continue
		}
		mem.Write32(addr, c.Regs[i])
		addr += 4
	}
	if pclrFlag {
		mem.Write32(addr, c.Regs[14])
	}
	c.Regs[13] = start
	return uint64(count) + 1
}

func thumbMultipleLoadStore(instr uint16, c *CPU, mem Bus) uint64 {
	load := instr&0x0800 != 0
	rb := (instr >> 8) & 0x7
	list := instr & 0xFF

	addr := c.Regs[rb]
	count := 0
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) == 0 {
			continue
		}
		count++
		if load {
			c.Regs[i] = mem.Read32(addr)
		} else {
			mem.Write32(addr, c.Regs[i])
		}
		addr += 4
	}
	c.Regs[rb] = addr
	return uint64(count) + 1
}

func thumbCondBranch(instr uint16, c *CPU) uint64 {
	cond := uint8((instr >> 8) & 0xF)
	if !c.condition(cond) {
		return 1
	}
	offset := int32(int8(instr & 0xFF)) * 2
	c.Regs[15] = uint32(int32(c.Regs[15]) + offset)
	return 3
}

func thumbSVC(instr uint16, c *CPU) uint64 {
	comment := uint32(instr & 0xFF)
	oldCPSR := c.CPSR
	returnAddr := c.Regs[15] - 2
	c.SwitchMode(ModeSVC)
	c.SetSPSR(oldCPSR)
	c.Regs[14] = returnAddr
	c.setFlag(FlagI, true)
	c.setFlag(FlagT, false)
	c.SVCPending = true
	c.SVCNumber = comment
	return 2
}

func thumbUncondBranch(instr uint16, c *CPU) uint64 {
	raw := instr & 0x07FF
	offset := int32(raw) << 1
	if raw&0x0400 != 0 {
		offset |= ^int32(0xFFF) // sign-extend 12-bit
	}
	c.Regs[15] = uint32(int32(c.Regs[15]) + offset)
	return 3
}

// thumbLongBranchLink handles both halves of a BL instruction pair.
// The high-offset half (H=0) stashes its bits in LR; the low-offset
// half (H=1) completes the computation and sets PC, leaving LR
// pointing at the instruction after the pair with bit 0 set (as a
// Thumb return address).
func thumbLongBranchLink(instr uint16, c *CPU) uint64 {
	low := instr&0x0800 != 0
	offset := uint32(instr & 0x07FF)

	if !low {
		ext := int32(offset << 12)
		if offset&0x0400 != 0 {
			ext |= ^int32(0x3F_FFFF) // sign-extend 23-bit shifted value
		}
		c.Regs[14] = uint32(int32(c.Regs[15]) + ext)
		return 1
	}

	next := c.Regs[15] - 2
	target := c.Regs[14] + (offset << 1)
	c.Regs[15] = target
	c.Regs[14] = next | 1
	return 3
}
