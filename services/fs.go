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

import "github.com/citrine3ds/citrine3ds/ipc"

// handleFs answers fs:USER requests with fixed opaque handles; no
// backing filesystem is emulated, so every open call succeeds and
// returns a fake handle/archive ID.
func handleFs(cmd ipc.Command, mem ipc.Bus, sm *ServiceManager) {
	switch cmd.CommandID {
	case 0x0801: // Initialize
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x080C: // OpenArchive
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0x100})
	case 0x080E: // CloseArchive
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0802: // OpenFile
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0x101})
	case 0x0808: // CreateFile
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0809: // CreateDirectory
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0803: // DeleteFile
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0807: // OpenDirectory
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0x102})
	case 0x0861: // InitializeWithSdkVersion
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0862: // SetPriority
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	default:
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	}
}
