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

package ipc

import (
	"testing"

	"github.com/citrine3ds/citrine3ds/memory"
)

func TestParseCommand(t *testing.T) {
	mem := memory.New()
	header := MakeHeader(0x0001, 2, 0)
	mem.Write32(BufferAddr, header)
	mem.Write32(BufferAddr+4, 0xAAAA)
	mem.Write32(BufferAddr+8, 0xBBBB)

	cmd := Parse(mem)
	if cmd.CommandID != 0x0001 {
		t.Fatalf("expected command id 0x0001, got %#x", cmd.CommandID)
	}
	if cmd.NormalParams != 2 || cmd.TranslateParams != 0 {
		t.Fatalf("expected 2 normal / 0 translate params, got %d/%d", cmd.NormalParams, cmd.TranslateParams)
	}
	if cmd.Param(0) != 0xAAAA || cmd.Param(1) != 0xBBBB {
		t.Fatalf("unexpected params: %#x %#x", cmd.Param(0), cmd.Param(1))
	}
}

func TestWriteResponse(t *testing.T) {
	mem := memory.New()
	header := MakeHeader(0x0001, 2, 0)
	WriteResponse(mem, header, 0, []uint32{0x1234, 0x5678})

	if mem.Read32(BufferAddr+4) != 0 {
		t.Fatal("expected result code 0")
	}
	if mem.Read32(BufferAddr+8) != 0x1234 || mem.Read32(BufferAddr+12) != 0x5678 {
		t.Fatal("expected response values written after the result code")
	}
}

func TestMakeHeaderEncoding(t *testing.T) {
	h := MakeHeader(0x0042, 3, 1)
	if (h>>16)&0xFFFF != 0x0042 {
		t.Fatalf("expected command id 0x0042, got %#x", (h>>16)&0xFFFF)
	}
	if (h>>6)&0x3F != 3 {
		t.Fatalf("expected normal params 3, got %d", (h>>6)&0x3F)
	}
	if h&0x3F != 1 {
		t.Fatalf("expected translate params 1, got %d", h&0x3F)
	}
}

func TestParamOutOfBoundsIsZero(t *testing.T) {
	cmd := Command{}
	if cmd.Param(99) != 0 {
		t.Fatal("expected out-of-bounds param to be 0")
	}
}
