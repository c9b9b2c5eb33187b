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

package services

import (
	"testing"

	"github.com/citrine3ds/citrine3ds/ipc"
	"github.com/citrine3ds/citrine3ds/kernel"
	"github.com/citrine3ds/citrine3ds/memory"
)

func TestFsInitialize(t *testing.T) {
	k := kernel.New()
	mem := memory.New()
	sm := New(k, mem)

	header := ipc.MakeHeader(0x0801, 1, 0)
	mem.Write32(ipc.BufferAddr, header)
	mem.Write32(ipc.BufferAddr+4, 0x20000)
	cmd := ipc.Parse(mem)
	handleFs(cmd, mem, sm)

	if mem.Read32(ipc.BufferAddr+4) != 0 {
		t.Fatal("expected result code 0")
	}
}

func TestFsOpenArchive(t *testing.T) {
	k := kernel.New()
	mem := memory.New()
	sm := New(k, mem)

	header := ipc.MakeHeader(0x080C, 3, 0)
	mem.Write32(ipc.BufferAddr, header)
	cmd := ipc.Parse(mem)
	handleFs(cmd, mem, sm)

	if mem.Read32(ipc.BufferAddr+8) != 0x100 {
		t.Fatalf("expected archive handle 0x100, got %#x", mem.Read32(ipc.BufferAddr+8))
	}
}
