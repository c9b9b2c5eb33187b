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

// handleDsp answers dsp::DSP requests. No audio is actually mixed;
// every component/pipe call succeeds so ndsp-linked homebrew gets
// through initialization.
func handleDsp(cmd ipc.Command, mem ipc.Bus, sm *ServiceManager) {
	switch cmd.CommandID {
	case 0x0001: // RecvData
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{1, 0})
	case 0x0002: // RecvDataIsReady
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{1})
	case 0x000C: // ConvertProcessAddressFromDspDram
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{cmd.Param(0)})
	case 0x000D: // WriteProcessPipe
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x000F: // GetSemaphoreEventHandle
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0})
	case 0x0010: // GetPipeEventHandle
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0})
	case 0x0011: // LoadComponent
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{1, 0})
	case 0x0012: // UnloadComponent
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0015: // RegisterInterruptEvents
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	default:
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	}
}
