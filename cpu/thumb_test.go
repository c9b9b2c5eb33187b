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

import "testing"

func TestThumbMovImmediate(t *testing.T) {
	c := New()
	mem := &stubBus{}
	// format 3, op=0 (MOV), rd=0, imm=0x55
	instr := uint16(0x2000) | 0x55
	ExecuteThumb(instr, c, mem)
	if c.Regs[0] != 0x55 {
		t.Fatalf("R0 = %#x, want 0x55", c.Regs[0])
	}
}

func TestThumbPushPopRoundTrip(t *testing.T) {
	c := New()
	mem := &stubBus{}
	c.Regs[13] = 0x2000
	c.Regs[0] = 0x1111_1111
	c.Regs[1] = 0x2222_2222
	c.Regs[14] = 0x3333_3333

	// PUSH {R0,R1,LR}
	push := uint16(0xB400) | 0x0100 | 0x03
	ExecuteThumb(push, c, mem)

	if c.Regs[13] != 0x2000-12 {
		t.Fatalf("SP after PUSH = %#x, want %#x", c.Regs[13], 0x2000-12)
	}

	c.Regs[0] = 0
	c.Regs[1] = 0
	c.Regs[15] = 0

	// POP {R0,R1,PC}
	pop := uint16(0xBC00) | 0x0100 | 0x03
	ExecuteThumb(pop, c, mem)

	if c.Regs[0] != 0x1111_1111 || c.Regs[1] != 0x2222_2222 {
		t.Fatalf("POP did not restore R0/R1: %#x %#x", c.Regs[0], c.Regs[1])
	}
	if c.Regs[15] != 0x3333_3332 {
		t.Fatalf("POP PC = %#x, want %#x", c.Regs[15], 0x3333_3332)
	}
	if c.Regs[13] != 0x2000 {
		t.Fatalf("SP after POP = %#x, want 0x2000", c.Regs[13])
	}
}

func TestThumbConditionalBranchTaken(t *testing.T) {
	c := New()
	mem := &stubBus{}
	c.setFlag(FlagZ, true)
	c.Regs[15] = 0x1000 + 4
	// BEQ, offset +2 (4 bytes)
	instr := uint16(0xD000) | 2
	ExecuteThumb(instr, c, mem)
	if c.Regs[15] != 0x1000+4+4 {
		t.Fatalf("PC after taken BEQ = %#x, want %#x", c.Regs[15], 0x1000+4+4)
	}
}

func TestThumbLongBranchLink(t *testing.T) {
	c := New()
	mem := &stubBus{}
	c.Regs[15] = 0x1000 + 4

	high := uint16(0xF000) | 0 // offset high bits = 0
	ExecuteThumb(high, c, mem)
	if c.Regs[14] != 0x1000+4 {
		t.Fatalf("LR after high half = %#x, want %#x", c.Regs[14], 0x1000+4)
	}

	c.Regs[15] = 0x1000 + 2 + 4 // pipeline-ahead PC for the second halfword
	low := uint16(0xF800) | 2   // low offset bits = 2 (4 bytes)
	ExecuteThumb(low, c, mem)

	want := (0x1000 + 4) + 4
	if c.Regs[15] != uint32(want) {
		t.Fatalf("PC after BL second half = %#x, want %#x", c.Regs[15], want)
	}
	if c.Regs[14]&1 == 0 {
		t.Fatalf("LR after BL should have bit0 set for thumb return")
	}
}
