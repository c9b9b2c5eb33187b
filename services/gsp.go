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

// Framebuffer geometry, grounded on spec.md's frame-timing constants.
const (
	TopFBWidth    = 400
	TopFBHeight   = 240
	BotFBWidth    = 320
	BotFBHeight   = 240
	BytesPerPixel = 4
	TopFBSize     = TopFBWidth * TopFBHeight * BytesPerPixel
	BotFBSize     = BotFBWidth * BotFBHeight * BytesPerPixel
)

// TopFBOffset and BotFBOffset locate each screen's framebuffer within
// the combined double-screen VRAM layout.
func TopFBOffset() uint32 { return 0 }
func BotFBOffset() uint32 { return TopFBSize }

// handleGsp answers gsp::Gpu requests, tracking buffer-swap addresses
// and acquire/release of exclusive GPU rights.
func handleGsp(cmd ipc.Command, mem ipc.Bus, sm *ServiceManager) {
	switch cmd.CommandID {
	case 0x0001: // WriteHWRegs
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0002: // WriteHWRegsWithMask
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0004: // ReadHWRegs
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0})
	case 0x0005: // SetBufferSwap
		screenID := cmd.Param(0)
		fbAddr := cmd.Param(1)
		if fbAddr != 0 {
			if screenID == 0 {
				sm.TopFBAddr = fbAddr
			} else {
				sm.BotFBAddr = fbAddr
			}
		}
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x000B: // FlushDataCache
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0013, 0x0019: // RegisterInterruptRelayQueue
		eventHandle := cmd.Param(0)
		sm.GspInterruptHandle = eventHandle
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{0, 0, sm.GspSharedMemHandle})
	case 0x0014: // RestoreVramSysArea
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0015: // ResetGpuCore
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0016: // AcquireRight
		sm.GspRightsAcquired = true
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	case 0x0017: // ReleaseRight
		sm.GspRightsAcquired = false
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	default:
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	}
}
