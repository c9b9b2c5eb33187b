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

// Button bitmask, matching ctrulib's KEY_* constants.
const (
	ButtonA      = 1 << 0
	ButtonB      = 1 << 1
	ButtonSelect = 1 << 2
	ButtonStart  = 1 << 3
	ButtonDRight = 1 << 4
	ButtonDLeft  = 1 << 5
	ButtonDUp    = 1 << 6
	ButtonDDown  = 1 << 7
	ButtonR      = 1 << 8
	ButtonL      = 1 << 9
	ButtonX      = 1 << 10
	ButtonY      = 1 << 11
)

// HidSharedMemSize is the size of hid's shared-memory block, as
// ctrulib maps it.
const HidSharedMemSize = 0x2B0

// padStateOffset is where the current/previous pad-state words live
// within the hid shared memory block.
const padStateOffset = 0x1C

// handleHid answers hid:USER requests.
func handleHid(cmd ipc.Command, mem ipc.Bus, sm *ServiceManager) {
	switch cmd.CommandID {
	case 0x000A: // GetIPCHandles
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{
			0, sm.HidSharedMemHandle, sm.HidPadEvent, sm.HidPadEvent, sm.HidPadEvent, sm.HidPadEvent, sm.HidPadEvent,
		})
	case 0x0001: // GetPadState (custom extension)
		ipc.WriteResponse(mem, cmd.Header, 0, []uint32{sm.Buttons})
	default:
		ipc.WriteResponse(mem, cmd.Header, 0, nil)
	}
}

// UpdateSharedMemory writes the current and previous pad-state words
// into the hid shared memory block. Buttons are stored inverted,
// matching the real console's active-low encoding (ctrulib XORs the
// raw word with 0xFFF on read).
func UpdateSharedMemory(mem ipc.Bus, baseAddr uint32, buttons uint32) {
	inverted := ^buttons
	mem.Write32(baseAddr+padStateOffset, inverted)
	mem.Write32(baseAddr+padStateOffset+4, inverted)
}
