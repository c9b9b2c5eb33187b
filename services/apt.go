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

// handleApt answers apt:U / apt:S requests. Values and command
// layout follow ctrulib's applet-manager ABI closely enough that
// homebrew linked against it gets through its startup sequence
// without special-casing this emulator.
func handleApt(cmd ipc.Command, mem ipc.Bus, sm *ServiceManager) {
	switch cmd.CommandID {
	case 0x0001: // GetLockHandle
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0, 0, 0, sm.AptLockHandle})
	case 0x0002: // Initialize
		sm.AptInitialized = true
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0, sm.AptSignalEvent, sm.AptResumeEvent})
	case 0x0003: // Enable
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0006: // GetAppletManInfo
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0, 0, 0x300, 0x300})
	case 0x000B: // InquireNotification
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0})
	case 0x000C: // SendParameter
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x000D: // ReceiveParameter
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0x300, 1, 0, 0})
	case 0x000E: // GlanceParameter
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0x300, 1, 0, 0})
	case 0x003B: // CancelParameter
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{1})
	case 0x0043: // NotifyToWait
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x004B: // AppletUtility
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0})
	case 0x0055: // SetApplicationCpuTimeLimit
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0056: // GetApplicationCpuTimeLimit
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{30})
	default:
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	}
}
