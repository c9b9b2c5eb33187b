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

package loader

import (
	"testing"

	"github.com/citrine3ds/citrine3ds/memory"
)

func putU16LE(out []byte, v uint16) []byte {
	return append(out, byte(v), byte(v>>8))
}

func putU32LE(out []byte, v uint32) []byte {
	return append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// make3DSX builds a minimal image with a zero-size (8-byte) relocation
// header per segment and no relocation entries, mirroring the test
// fixture in loader/threedsx.rs.
func make3DSX(code, rodata, data []byte, bss uint32) []byte {
	var out []byte
	out = append(out, magic3DSX[:]...)
	out = putU16LE(out, 32)
	out = putU16LE(out, 8)
	out = putU32LE(out, 0)
	out = putU32LE(out, 0)
	out = putU32LE(out, uint32(len(code)))
	out = putU32LE(out, uint32(len(rodata)))
	out = putU32LE(out, uint32(len(data))+bss)
	out = putU32LE(out, bss)
	for i := 0; i < 3; i++ {
		out = putU32LE(out, 0)
		out = putU32LE(out, 0)
	}
	out = append(out, code...)
	out = append(out, rodata...)
	out = append(out, data...)
	return out
}

func TestCheckMagicValid(t *testing.T) {
	data := []byte{0x33, 0x44, 0x53, 0x58, 0, 0, 0, 0}
	if !CheckMagic(data) {
		t.Fatal("expected valid magic to be recognized")
	}
}

func TestCheckMagicInvalid(t *testing.T) {
	data := []byte{0, 0, 0, 0}
	if CheckMagic(data) {
		t.Fatal("expected invalid magic to be rejected")
	}
}

func TestParseValidHeader(t *testing.T) {
	code := make([]byte, 16)
	data := make3DSX(code, nil, nil, 0)
	header, ok := ParseHeader(data)
	if !ok {
		t.Fatal("expected header to parse")
	}
	if header.CodeSegSize != 16 || header.RodataSegSize != 0 {
		t.Fatalf("unexpected sizes: code=%d rodata=%d", header.CodeSegSize, header.RodataSegSize)
	}
}

func TestParseTooShort(t *testing.T) {
	if _, ok := ParseHeader([]byte{0x33, 0x44}); ok {
		t.Fatal("expected short buffer to fail parsing")
	}
}

func TestLoadBasic(t *testing.T) {
	code := []byte{0xEA, 0x00, 0x00, 0x00}
	data := make3DSX(code, nil, nil, 4)
	mem := memory.New()
	base := uint32(0x0010_0000)

	addr, ok := Load(data, mem, base)
	if !ok || addr != base {
		t.Fatalf("expected load to succeed at base, got addr=%#x ok=%v", addr, ok)
	}
	if mem.Read8(base+4) != 0 {
		t.Fatal("expected BSS to be zero-filled")
	}
}

func TestLoadPageAlignsRodataAndData(t *testing.T) {
	code := make([]byte, 20) // not page-aligned
	rodata := []byte{0xAB, 0xCD, 0xEF, 0x01}
	data := make3DSX(code, rodata, nil, 0)
	mem := memory.New()
	base := uint32(0x0010_0000)

	_, ok := Load(data, mem, base)
	if !ok {
		t.Fatal("expected load to succeed")
	}
	// rodata should start at the next page boundary after code, not
	// immediately after the 20-byte code segment.
	expectedRodataAddr := alignUp(base + uint32(len(code)))
	if mem.Read32(expectedRodataAddr) != 0x01EFCDAB {
		t.Fatalf("expected rodata at page-aligned address %#x, got %#x", expectedRodataAddr, mem.Read32(expectedRodataAddr))
	}
}

func TestLoadCrossSegmentRelocation(t *testing.T) {
	// code segment: one word that will be patched as a cross-segment
	// relocation pointing at offset 4 into the data segment (target=2).
	packed := uint32(4)<<4 | 2
	code := putU32LE(nil, packed)
	dataSeg := make([]byte, 8)

	var out []byte
	out = append(out, magic3DSX[:]...)
	out = putU16LE(out, 32)
	out = putU16LE(out, 8)
	out = putU32LE(out, 0)
	out = putU32LE(out, 0)
	out = putU32LE(out, uint32(len(code)))
	out = putU32LE(out, 0)
	out = putU32LE(out, uint32(len(dataSeg)))
	out = putU32LE(out, 0)
	// reloc header: code segment has 0 abs, 1 rel
	out = putU32LE(out, 0)
	out = putU32LE(out, 1)
	// rodata segment: none
	out = putU32LE(out, 0)
	out = putU32LE(out, 0)
	// data segment: none
	out = putU32LE(out, 0)
	out = putU32LE(out, 0)
	out = append(out, code...)
	out = append(out, dataSeg...)
	// one relocation entry: skip=0, patch=1
	out = putU32LE(out, 0x0001_0000)

	mem := memory.New()
	base := uint32(0x0010_0000)

	addr, ok := Load(out, mem, base)
	if !ok {
		t.Fatal("expected cross-segment relocation load to succeed")
	}

	// data segment is placed after code, page-aligned.
	dataAddr := alignUp(addr + uint32(len(code)))
	got := mem.Read32(base)
	want := dataAddr + 4
	if got != want {
		t.Fatalf("expected cross-segment relocation to resolve to %#x, got %#x", want, got)
	}
}
