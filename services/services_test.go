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

func TestServiceManagerCreationPreCreatesHandles(t *testing.T) {
	k := kernel.New()
	mem := memory.New()
	sm := New(k, mem)

	if sm.AptInitialized {
		t.Fatal("expected apt to start uninitialized")
	}
	if sm.GspRightsAcquired {
		t.Fatal("expected gsp rights to start unacquired")
	}
	if sm.Buttons != 0 {
		t.Fatal("expected buttons to start at 0")
	}
	if _, ok := k.GetHandle(sm.AptLockHandle); !ok {
		t.Fatal("expected apt lock handle to resolve")
	}
	if _, ok := k.ConnectToPort("srv:"); !ok {
		t.Fatal("expected srv: to be registered")
	}
}

func TestUnknownServiceReturnsSuccess(t *testing.T) {
	k := kernel.New()
	mem := memory.New()
	sm := New(k, mem)

	header := ipc.MakeHeader(0x0001, 0, 0)
	mem.Write32(ipc.BufferAddr, header)
	sm.HandleRequest("unknown:SVC", mem)

	if mem.Read32(ipc.BufferAddr+4) != 0 {
		t.Fatal("expected zero result code for unknown service")
	}
}
