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

// ExecuteARM decodes and executes one 32-bit ARM instruction. The
// caller (runtime.step) is responsible for the pipeline-ahead PC
// illusion: c.Regs[15] must already hold instr_addr+8 when this is
// called, and the caller restores it to instr_addr+4 afterward if
// this function did not itself assign a new PC. Returns the
// instruction's cycle cost.
//
// Decode follows the classification table in spec.md §4.1: the checks
// below are ordered from most-specific encoding to least, since
// several instruction classes share the same top-level 27..26 bits
// and are only distinguished by narrower bitfields.
func ExecuteARM(instr uint32, c *CPU, mem Bus) uint64 {
	cond := uint8(instr >> 28)
	if !c.condition(cond) {
		return 1
	}

	switch {
	case instr&0x0FFF_FFF0 == 0x012F_FF10: // BX
		return execBX(instr, c, false)
	case instr&0x0FFF_FFF0 == 0x012F_FF30: // BLX (register)
		return execBX(instr, c, true)
	case instr&0x0E00_0000 == 0x0A00_0000: // B / BL
		return execBranch(instr, c)
	case instr&0x0F00_0000 == 0x0F00_0000: // SVC
		return execSVC(instr, c)
	case instr&0x0FF0_0FFF == 0x0190_0F9F: // LDREX
		return execLDREX(instr, c, mem)
	case instr&0x0FF0_0FF0 == 0x0180_0F90: // STREX (always succeeds)
		return execSTREX(instr, c, mem)
	case instr&0x0FB0_0FF0 == 0x0100_0090: // SWP / SWPB
		return execSWP(instr, c, mem)
	case instr&0x0FC0_00F0 == 0x0000_0090: // MUL / MLA
		return execMul(instr, c)
	case instr&0x0F80_00F0 == 0x0080_0090: // UMULL/SMULL/UMLAL/SMLAL
		return execMulLong(instr, c)
	case instr&0x0FBF_0FFF == 0x010F_0000: // MRS
		return execMRS(instr, c)
	case instr&0x0FB0_FFF0 == 0x0120_F000: // MSR register
		return execMSR(instr, c, false)
	case instr&0x0FB0_F000 == 0x0320_F000: // MSR immediate
		return execMSR(instr, c, true)
	case instr&0x0FFF_0FF0 == 0x016F_0F10: // CLZ
		return execCLZ(instr, c)
	case instr&0x0F00_0010 == 0x0E00_0010: // MRC / MCR (p15 only)
		return execCoproc(instr, c)
	case instr&0x0E00_0090 == 0x0000_0090 && instr&0x60 != 0: // halfword/signed transfer
		return execHalfword(instr, c, mem)
	case instr&0x0C00_0000 == 0x0000_0000: // data processing
		return execDataProcessing(instr, c)
	case instr&0x0C00_0000 == 0x0400_0000: // single data transfer
		return execSingleTransfer(instr, c, mem)
	case instr&0x0E00_0000 == 0x0800_0000: // block data transfer
		return execBlockTransfer(instr, c, mem)
	default:
		// UnimplementedInstruction: advance a cycle, do nothing
		// (spec.md §7 permissive recovery policy).
		return 1
	}
}

func signExtend24To32(v uint32) int32 {
	if v&0x0080_0000 != 0 {
		return int32(v | 0xFF00_0000)
	}
	return int32(v)
}

func execBranch(instr uint32, c *CPU) uint64 {
	offset := signExtend24To32(instr&0x00FF_FFFF) << 2
	link := instr&0x0100_0000 != 0
	if link {
		c.Regs[14] = c.Regs[15] - 4
	}
	c.Regs[15] = uint32(int32(c.Regs[15]) + offset)
	return 3
}

func execBX(instr uint32, c *CPU, link bool) uint64 {
	rm := instr & 0xF
	target := c.Regs[rm]
	if link {
		c.Regs[14] = c.Regs[15] - 4
	}
	thumb := target&1 != 0
	c.setFlag(FlagT, thumb)
	if thumb {
		c.Regs[15] = target &^ 1
	} else {
		c.Regs[15] = target &^ 3
	}
	return 3
}

func execSVC(instr uint32, c *CPU) uint64 {
	comment := instr & 0x00FF_FFFF
	oldCPSR := c.CPSR
	returnAddr := c.Regs[15] - 4
	c.SwitchMode(ModeSVC)
	c.SetSPSR(oldCPSR)
	c.Regs[14] = returnAddr
	c.setFlag(FlagI, true)
	c.SVCPending = true
	c.SVCNumber = comment
	return 2
}

// operand2 decodes the ALU second operand for a data-processing
// instruction: an 8-bit immediate rotated right by 2*rotate, or a
// register optionally shifted by an immediate or by the low byte of
// another register.
func operand2(instr uint32, c *CPU) (value uint32, carryOut bool) {
	carryIn := c.flagC()

	if instr&0x0200_0000 != 0 {
		imm := instr & 0xFF
		rot := (instr >> 8) & 0xF * 2
		if rot == 0 {
			return imm, carryIn
		}
		return bits.RotateLeft32(imm, -int(rot)), imm&(1<<(rot-1)) != 0
	}

	rm := instr & 0xF
	value = c.Regs[rm]
	shiftType := ShiftType((instr >> 5) & 0x3)

	if instr&0x10 != 0 {
		// shift amount in register Rs, low byte
		rs := (instr >> 8) & 0xF
		amount := uint8(c.Regs[rs] & 0xFF)
		if rm == 15 {
			value += 4 // extra pipeline advance when Rm==PC and shift is register-specified
		}
		if amount == 0 {
			return value, carryIn
		}
		return shift(value, shiftType, amount, carryIn, false)
	}

	amount := uint8((instr >> 7) & 0x1F)
	return shift(value, shiftType, amount, carryIn, true)
}

const (
	opAND = 0x0
	opEOR = 0x1
	opSUB = 0x2
	opRSB = 0x3
	opADD = 0x4
	opADC = 0x5
	opSBC = 0x6
	opRSC = 0x7
	opTST = 0x8
	opTEQ = 0x9
	opCMP = 0xA
	opCMN = 0xB
	opORR = 0xC
	opMOV = 0xD
	opBIC = 0xE
	opMVN = 0xF
)

func execDataProcessing(instr uint32, c *CPU) uint64 {
	op := (instr >> 21) & 0xF
	sBit := instr&0x0010_0000 != 0
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF

	op1 := c.Regs[rn]
	op2, shiftCarry := operand2(instr, c)

	var result uint32
	var carry, overflow bool
	writesResult := true

	switch op {
	case opAND:
		result = op1 & op2
		carry = shiftCarry
	case opEOR:
		result = op1 ^ op2
		carry = shiftCarry
	case opSUB:
		result, carry, overflow = subWithFlags(op1, op2, 0)
	case opRSB:
		result, carry, overflow = subWithFlags(op2, op1, 0)
	case opADD:
		result, carry, overflow = addWithFlags(op1, op2, 0)
	case opADC:
		ci := uint32(0)
		if c.flagC() {
			ci = 1
		}
		result, carry, overflow = addWithFlags(op1, op2, ci)
	case opSBC:
		bi := uint32(1)
		if c.flagC() {
			bi = 0
		}
		result, carry, overflow = subWithFlags(op1, op2, bi)
	case opRSC:
		bi := uint32(1)
		if c.flagC() {
			bi = 0
		}
		result, carry, overflow = subWithFlags(op2, op1, bi)
	case opTST:
		result = op1 & op2
		carry = shiftCarry
		writesResult = false
	case opTEQ:
		result = op1 ^ op2
		carry = shiftCarry
		writesResult = false
	case opCMP:
		result, carry, overflow = subWithFlags(op1, op2, 0)
		writesResult = false
	case opCMN:
		result, carry, overflow = addWithFlags(op1, op2, 0)
		writesResult = false
	case opORR:
		result = op1 | op2
		carry = shiftCarry
	case opMOV:
		result = op2
		carry = shiftCarry
	case opBIC:
		result = op1 &^ op2
		carry = shiftCarry
	case opMVN:
		result = ^op2
		carry = shiftCarry
	}

	if writesResult {
		if rd == 15 {
			c.Regs[15] = result
			if sBit {
				c.CPSR = c.SPSR()
			}
			return 3
		}
		c.Regs[rd] = result
	}

	if sBit {
		c.setNZ(result)
		switch op {
		case opADD, opADC, opSUB, opSBC, opRSB, opRSC, opCMP, opCMN:
			c.setFlag(FlagC, carry)
			c.setFlag(FlagV, overflow)
		default:
			c.setFlag(FlagC, carry)
		}
	}

	return 1
}

func execMRS(instr uint32, c *CPU) uint64 {
	rd := (instr >> 12) & 0xF
	useSPSR := instr&0x0040_0000 != 0
	if useSPSR {
		c.Regs[rd] = c.SPSR()
	} else {
		c.Regs[rd] = c.CPSR
	}
	return 1
}

func execMSR(instr uint32, c *CPU, immediate bool) uint64 {
	useSPSR := instr&0x0040_0000 != 0
	fieldMask := (instr >> 16) & 0xF

	var value uint32
	if immediate {
		imm := instr & 0xFF
		rot := (instr >> 8) & 0xF * 2
		value = bits.RotateLeft32(imm, -int(rot))
	} else {
		rm := instr & 0xF
		value = c.Regs[rm]
	}

	var mask uint32
	if fieldMask&0x1 != 0 {
		mask |= 0x0000_00FF
	}
	if fieldMask&0x2 != 0 {
		mask |= 0x0000_FF00
	}
	if fieldMask&0x4 != 0 {
		mask |= 0x00FF_0000
	}
	if fieldMask&0x8 != 0 {
		mask |= 0xFF00_0000
	}

	if useSPSR {
		c.SetSPSR((c.SPSR() &^ mask) | (value & mask))
		return 1
	}

	if mask&0xFF != 0 {
		// control byte write can change mode; go through SwitchMode
		newMode := (value & mask & 0x1F)
		if newMode != 0 && newMode != c.Mode() {
			c.SwitchMode(newMode)
		}
	}
	c.CPSR = (c.CPSR &^ mask) | (value & mask)
	return 1
}

func execCLZ(instr uint32, c *CPU) uint64 {
	rd := (instr >> 12) & 0xF
	rm := instr & 0xF
	v := c.Regs[rm]
	if v == 0 {
		c.Regs[rd] = 32
	} else {
		c.Regs[rd] = uint32(bits.LeadingZeros32(v))
	}
	return 1
}

func execMul(instr uint32, c *CPU) uint64 {
	rd := (instr >> 16) & 0xF
	rn := (instr >> 12) & 0xF
	rs := (instr >> 8) & 0xF
	rm := instr & 0xF
	accumulate := instr&0x0020_0000 != 0
	sBit := instr&0x0010_0000 != 0

	result := c.Regs[rm] * c.Regs[rs]
	if accumulate {
		result += c.Regs[rn]
	}
	c.Regs[rd] = result
	if sBit {
		c.setNZ(result)
	}
	return 4
}

func execMulLong(instr uint32, c *CPU) uint64 {
	rdHi := (instr >> 16) & 0xF
	rdLo := (instr >> 12) & 0xF
	rs := (instr >> 8) & 0xF
	rm := instr & 0xF
	signedOp := instr&0x0040_0000 != 0
	accumulate := instr&0x0020_0000 != 0
	sBit := instr&0x0010_0000 != 0

	var result uint64
	if signedOp {
		result = uint64(int64(int32(c.Regs[rm])) * int64(int32(c.Regs[rs])))
	} else {
		result = uint64(c.Regs[rm]) * uint64(c.Regs[rs])
	}
	if accumulate {
		result += uint64(c.Regs[rdHi])<<32 | uint64(c.Regs[rdLo])
	}
	c.Regs[rdLo] = uint32(result)
	c.Regs[rdHi] = uint32(result >> 32)
	if sBit {
		c.setFlag(FlagZ, result == 0)
		c.setFlag(FlagN, result&0x8000_0000_0000_0000 != 0)
	}
	return 5
}

func execSWP(instr uint32, c *CPU, mem Bus) uint64 {
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF
	rm := instr & 0xF
	byteOp := instr&0x0040_0000 != 0
	addr := c.Regs[rn]

	if byteOp {
		old := mem.Read8(addr)
		mem.Write8(addr, byte(c.Regs[rm]))
		c.Regs[rd] = uint32(old)
	} else {
		old := mem.Read32(addr)
		mem.Write32(addr, c.Regs[rm])
		c.Regs[rd] = old
	}
	return 4
}

func execLDREX(instr uint32, c *CPU, mem Bus) uint64 {
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF
	c.Regs[rd] = mem.Read32(c.Regs[rn])
	return 3
}

// execSTREX always succeeds, per spec.md §4.1's documented HLE
// shortcut (there is no exclusive-monitor model in this runtime).
func execSTREX(instr uint32, c *CPU, mem Bus) uint64 {
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF
	rm := instr & 0xF
	mem.Write32(c.Regs[rn], c.Regs[rm])
	c.Regs[rd] = 0
	return 3
}

func execSingleTransfer(instr uint32, c *CPU, mem Bus) uint64 {
	immediate := instr&0x0200_0000 == 0
	pre := instr&0x0100_0000 != 0
	up := instr&0x0080_0000 != 0
	byteOp := instr&0x0040_0000 != 0
	writeback := instr&0x0020_0000 != 0
	load := instr&0x0010_0000 != 0
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF

	var offset uint32
	if immediate {
		offset = instr & 0x0FFF
	} else {
		rm := instr & 0xF
		shiftType := ShiftType((instr >> 5) & 0x3)
		amount := uint8((instr >> 7) & 0x1F)
		offset, _ = shift(c.Regs[rm], shiftType, amount, c.flagC(), true)
	}

	base := c.Regs[rn]
	addr := base
	if pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	if load {
		if byteOp {
			c.Regs[rd] = uint32(mem.Read8(addr))
		} else {
			value := mem.Read32(addr &^ 3)
			rot := (addr & 3) * 8
			c.Regs[rd] = bits.RotateLeft32(value, -int(rot))
		}
	} else {
		storeVal := c.Regs[rd]
		if rd == 15 {
			storeVal += 4
		}
		if byteOp {
			mem.Write8(addr, byte(storeVal))
		} else {
			mem.Write32(addr&^3, storeVal)
		}
	}

	if !pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.Regs[rn] = addr
	} else if writeback {
		c.Regs[rn] = addr
	}

	if load && rd == 15 {
		c.Regs[15] &^= 3
		return 5
	}
	if load {
		return 3
	}
	return 2
}

func execHalfword(instr uint32, c *CPU, mem Bus) uint64 {
	pre := instr&0x0100_0000 != 0
	up := instr&0x0080_0000 != 0
	immediate := instr&0x0040_0000 != 0
	writeback := instr&0x0020_0000 != 0
	load := instr&0x0010_0000 != 0
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF
	sh := (instr >> 5) & 0x3 // 01=unsigned halfword, 10=signed byte, 11=signed halfword

	var offset uint32
	if immediate {
		offset = ((instr >> 4) & 0xF0) | (instr & 0xF)
	} else {
		rm := instr & 0xF
		offset = c.Regs[rm]
	}

	base := c.Regs[rn]
	addr := base
	if pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	if load {
		switch sh {
		case 0x1: // LDRH
			c.Regs[rd] = uint32(mem.Read16(addr))
		case 0x2: // LDRSB
			v := mem.Read8(addr)
			c.Regs[rd] = uint32(int32(int8(v)))
		case 0x3: // LDRSH
			v := mem.Read16(addr)
			c.Regs[rd] = uint32(int32(int16(v)))
		}
	} else {
		// STRH
		mem.Write16(addr, uint16(c.Regs[rd]))
	}

	if !pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.Regs[rn] = addr
	} else if writeback {
		c.Regs[rn] = addr
	}

	if load {
		return 3
	}
	return 2
}

func execBlockTransfer(instr uint32, c *CPU, mem Bus) uint64 {
	pre := instr&0x0100_0000 != 0
	up := instr&0x0080_0000 != 0
	writeback := instr&0x0020_0000 != 0
	load := instr&0x0010_0000 != 0
	rn := (instr >> 16) & 0xF
	list := instr & 0xFFFF

	count := bits.OnesCount16(uint16(list))
	base := c.Regs[rn]

	var start uint32
	if up {
		start = base
		if pre {
			start += 4
		}
	} else {
		start = base - uint32(count)*4
		if !pre {
			start += 4
		}
	}

	addr := start
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) == 0 {
			continue
		}
		if load {
			v := mem.Read32(addr)
			if i == 15 {
				c.setFlag(FlagT, v&1 != 0)
				c.Regs[15] = v &^ 1
			} else {
				c.Regs[i] = v
			}
		} else {
			v := c.Regs[i]
			if i == 15 {
				v += 4
			}
			mem.Write32(addr, v)
		}
		addr += 4
	}

	if writeback {
		if up {
			c.Regs[rn] = base + uint32(count)*4
		} else {
			c.Regs[rn] = base - uint32(count)*4
		}
	}

	cost := uint64(count) + 1
	if load {
		cost++
	}
	return cost
}

// execCoproc implements MRC/MCR for coprocessor 15 only; any other
// coprocessor number is a no-op, matching spec.md's "other
// coprocessors are no-ops" rule.
func execCoproc(instr uint32, c *CPU) uint64 {
	cpNum := (instr >> 8) & 0xF
	if cpNum != 15 {
		return 1
	}

	load := instr&0x0010_0000 != 0
	crn := uint8((instr >> 16) & 0xF)
	rd := (instr >> 12) & 0xF
	crm := uint8(instr & 0xF)
	opc1 := uint8((instr >> 21) & 0x7)
	opc2 := uint8((instr >> 5) & 0x7)

	if load {
		v := c.CP15.Read(crn, opc1, crm, opc2)
		if rd == 15 {
			c.setNZ(v)
		} else {
			c.Regs[rd] = v
		}
	} else {
		c.CP15.Write(crn, opc1, crm, opc2, c.Regs[rd])
	}
	return 2
}
