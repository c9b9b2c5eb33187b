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

package errors

// error messages, grouped by source package
const (
	// loader
	MalformedExecutable = "loader: malformed executable: %v"
	BadMagic             = "loader: bad magic number"
	TruncatedHeader      = "loader: truncated header"
	TruncatedSegment     = "loader: truncated %s segment"
	TruncatedRelocation  = "loader: truncated relocation table"

	// memory
	UnmappedRead  = "memory: read from unmapped address (%#08x)"
	UnmappedWrite = "memory: write to unmapped address (%#08x)"
	HeapExhausted = "memory: heap allocation exceeds region (%#08x bytes requested)"

	// cpu
	UnimplementedInstruction = "cpu: unimplemented instruction (%#08x) at (%#08x)"
	UnpredictableCondition   = "cpu: condition field 0b1111 is unpredictable"

	// kernel
	InvalidHandle  = "kernel: invalid handle (%#08x)"
	UnknownPort    = "kernel: unknown port (%s)"
	ThreadCapacity = "kernel: thread capacity exceeded (%d)"

	// ipc
	CommandBufferOverrun = "ipc: command buffer overrun at word %d"

	// monitor
	MonitorCommand = "monitor: %v"
)
