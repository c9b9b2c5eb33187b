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

package hw

// CPUFreqHz is the ARM11 core's nominal clock rate, the basis for
// converting accumulated cycles into wall-clock time.
const CPUFreqHz = 268_111_856

// SystemTimer is a free-running cycle counter, the HLE stand-in for
// the console's hardware system tick register.
type SystemTimer struct {
	cycleCount uint64
}

// NewSystemTimer creates a timer at zero.
func NewSystemTimer() SystemTimer {
	return SystemTimer{}
}

// AddCycles advances the counter, wrapping on overflow like the real
// 64-bit hardware register would.
func (t *SystemTimer) AddCycles(n uint64) {
	t.cycleCount += n
}

// Cycles returns the raw accumulated cycle count.
func (t *SystemTimer) Cycles() uint64 {
	return t.cycleCount
}

// Microseconds converts the accumulated cycle count to elapsed
// microseconds at CPUFreqHz.
func (t *SystemTimer) Microseconds() uint64 {
	return t.cycleCount * 1_000_000 / CPUFreqHz
}

// Milliseconds converts the accumulated cycle count to elapsed
// milliseconds.
func (t *SystemTimer) Milliseconds() uint64 {
	return t.Microseconds() / 1000
}

// Reset zeroes the counter, used by Emulator.Reset.
func (t *SystemTimer) Reset() {
	t.cycleCount = 0
}
