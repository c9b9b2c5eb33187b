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

// Package loader parses and places homebrew 3DSX executables into a
// Memory, patching the relocations ctrulib's linker leaves behind.
package loader

import "github.com/citrine3ds/citrine3ds/memory"

const headerSize = 32

var magic3DSX = [4]byte{0x33, 0x44, 0x53, 0x58}

const pageAlign = 0x1000

func alignUp(v uint32) uint32 {
	return (v + pageAlign - 1) &^ (pageAlign - 1)
}

// Header is a parsed 3DSX header.
type Header struct {
	HeaderSize      uint16
	RelocHeaderSize uint16
	FormatVersion   uint32
	Flags           uint32
	CodeSegSize     uint32
	RodataSegSize   uint32
	DataSegSize     uint32 // includes BSS
	BSSSize         uint32
}

// CheckMagic reports whether data begins with the 3DSX magic.
func CheckMagic(data []byte) bool {
	return len(data) >= 4 && data[0] == magic3DSX[0] && data[1] == magic3DSX[1] &&
		data[2] == magic3DSX[2] && data[3] == magic3DSX[3]
}

// ParseHeader decodes the fixed 32-byte header, returning ok=false on
// a short buffer or bad magic.
func ParseHeader(data []byte) (Header, bool) {
	if len(data) < headerSize || !CheckMagic(data) {
		return Header{}, false
	}
	return Header{
		HeaderSize:      readU16(data, 4),
		RelocHeaderSize: readU16(data, 6),
		FormatVersion:   readU32(data, 8),
		Flags:           readU32(data, 12),
		CodeSegSize:     readU32(data, 16),
		RodataSegSize:   readU32(data, 20),
		DataSegSize:     readU32(data, 24),
		BSSSize:         readU32(data, 28),
	}, true
}

// segment indices used by cross-segment relocation entries.
const (
	segCode = iota
	segRodata
	segData
)

// Load parses, places, and relocates a 3DSX image into mem at
// baseAddr. Code is placed at baseAddr; rodata and data each follow
// the previous segment page-aligned up. BSS follows data and is
// zero-filled; it occupies no space on disk (DataSegSize includes it,
// so the on-disk data slice is DataSegSize-BSSSize bytes). Returns
// ok=false on a malformed image, leaving mem untouched.
func Load(data []byte, mem *memory.Memory, baseAddr uint32) (uint32, bool) {
	header, ok := ParseHeader(data)
	if !ok {
		return 0, false
	}

	relocHeadersOffset := int(header.HeaderSize)
	relocHdrSize := int(header.RelocHeaderSize)
	relocHeadersTotal := relocHdrSize * 3
	segmentsOffset := relocHeadersOffset + relocHeadersTotal

	codeSize := int(header.CodeSegSize)
	rodataSize := int(header.RodataSegSize)
	if int(header.BSSSize) > int(header.DataSegSize) {
		return 0, false
	}
	diskDataSize := int(header.DataSegSize) - int(header.BSSSize)

	totalDiskSeg := codeSize + rodataSize + diskDataSize
	if len(data) < segmentsOffset+totalDiskSeg {
		return 0, false
	}

	codeAddr := baseAddr
	rodataAddr := alignUp(codeAddr + uint32(codeSize))
	dataAddr := alignUp(rodataAddr + uint32(rodataSize))
	bssAddr := dataAddr + uint32(diskDataSize)

	mem.WriteBlock(codeAddr, data[segmentsOffset:segmentsOffset+codeSize])
	mem.WriteBlock(rodataAddr, data[segmentsOffset+codeSize:segmentsOffset+codeSize+rodataSize])
	mem.WriteBlock(dataAddr, data[segmentsOffset+codeSize+rodataSize:segmentsOffset+totalDiskSeg])
	for i := uint32(0); i < header.BSSSize; i++ {
		mem.Write8(bssAddr+i, 0)
	}

	segAddrs := [3]uint32{codeAddr, rodataAddr, dataAddr}
	relocDataOffset := segmentsOffset + totalDiskSeg
	relocPos := relocDataOffset

	for seg := 0; seg < 3; seg++ {
		if relocHdrSize < 8 {
			continue
		}
		rhOff := relocHeadersOffset + seg*relocHdrSize
		absCount := int(readU32(data, rhOff))
		relCount := int(readU32(data, rhOff+4))
		segBase := segAddrs[seg]

		pos := segBase
		for i := 0; i < absCount; i++ {
			if relocPos+4 > len(data) {
				break
			}
			entry := readU32(data, relocPos)
			relocPos += 4
			skip := entry & 0xFFFF
			patch := (entry >> 16) & 0xFFFF
			pos += skip * 4
			for p := uint32(0); p < patch; p++ {
				val := mem.Read32(pos)
				mem.Write32(pos, val+baseAddr)
				pos += 4
			}
		}

		pos = segBase
		for i := 0; i < relCount; i++ {
			if relocPos+4 > len(data) {
				break
			}
			entry := readU32(data, relocPos)
			relocPos += 4
			skip := entry & 0xFFFF
			patch := (entry >> 16) & 0xFFFF
			pos += skip * 4
			for p := uint32(0); p < patch; p++ {
				packed := mem.Read32(pos)
				target := packed & 0xF
				offset := packed >> 4
				var patched uint32
				switch target {
				case segCode, segRodata, segData:
					patched = segAddrs[target] + offset
				default:
					patched = packed + baseAddr
				}
				mem.Write32(pos, patched)
				pos += 4
			}
		}
	}

	return baseAddr, true
}

func readU16(data []byte, offset int) uint16 {
	if offset+2 > len(data) {
		return 0
	}
	return uint16(data[offset]) | uint16(data[offset+1])<<8
}

func readU32(data []byte, offset int) uint32 {
	if offset+4 > len(data) {
		return 0
	}
	return uint32(data[offset]) | uint32(data[offset+1])<<8 | uint32(data[offset+2])<<16 | uint32(data[offset+3])<<24
}
