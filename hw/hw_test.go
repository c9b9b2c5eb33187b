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

import "testing"

func TestHardwareTick(t *testing.T) {
	h := New()
	h.Tick(100)
	if h.Timer.Cycles() != 100 {
		t.Fatalf("expected 100 cycles, got %d", h.Timer.Cycles())
	}
	h.Tick(50)
	if h.Timer.Cycles() != 150 {
		t.Fatalf("expected 150 cycles, got %d", h.Timer.Cycles())
	}
}

func TestTimerAccumulate(t *testing.T) {
	timer := NewSystemTimer()
	if timer.Cycles() != 0 {
		t.Fatal("expected timer to start at 0")
	}
	timer.AddCycles(1000)
	if timer.Cycles() != 1000 {
		t.Fatalf("expected 1000 cycles, got %d", timer.Cycles())
	}
	timer.AddCycles(500)
	if timer.Cycles() != 1500 {
		t.Fatalf("expected 1500 cycles, got %d", timer.Cycles())
	}
}

func TestTimerMicroseconds(t *testing.T) {
	timer := NewSystemTimer()
	timer.AddCycles(CPUFreqHz)
	if timer.Microseconds() != 1_000_000 {
		t.Fatalf("expected 1,000,000 microseconds, got %d", timer.Microseconds())
	}
}

func TestTimerReset(t *testing.T) {
	timer := NewSystemTimer()
	timer.AddCycles(12345)
	timer.Reset()
	if timer.Cycles() != 0 {
		t.Fatal("expected timer to reset to 0")
	}
}
