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

package cpu

// ShiftType enumerates the four barrel-shifter operations.
type ShiftType uint8

const (
	ShiftLSL ShiftType = iota
	ShiftLSR
	ShiftASR
	ShiftROR
)

// shift applies the barrel shifter to value by amount, honoring the
// spec.md §4.1 tie-breaks for an immediate shift amount of zero: LSL#0
// passes through unchanged; LSR#0 and ASR#0 behave as shifts by 32;
// ROR#0 is RRX (rotate right through carry by one bit). immediate
// distinguishes an encoded immediate shift amount of literal zero from
// a register-sourced shift amount that happens to be zero (the latter
// never triggers these special cases).
func shift(value uint32, shiftType ShiftType, amount uint8, carryIn bool, immediate bool) (result uint32, carryOut bool) {
	switch shiftType {
	case ShiftLSL:
		return shiftLSL(value, amount, carryIn)
	case ShiftLSR:
		return shiftLSR(value, amount, carryIn, immediate)
	case ShiftASR:
		return shiftASR(value, amount, carryIn, immediate)
	case ShiftROR:
		return shiftROR(value, amount, carryIn, immediate)
	}
	return value, carryIn
}

func shiftLSL(value uint32, amount uint8, carryIn bool) (uint32, bool) {
	if amount == 0 {
		return value, carryIn
	}
	if amount > 32 {
		return 0, false
	}
	if amount == 32 {
		return 0, value&1 != 0
	}
	carryOut := value&(1<<(32-amount)) != 0
	return value << amount, carryOut
}

func shiftLSR(value uint32, amount uint8, carryIn bool, immediate bool) (uint32, bool) {
	if amount == 0 {
		if immediate {
			// LSR#0 == LSR#32
			return 0, value&0x8000_0000 != 0
		}
		return value, carryIn
	}
	if amount >= 32 {
		if amount == 32 {
			return 0, value&0x8000_0000 != 0
		}
		return 0, false
	}
	carryOut := value&(1<<(amount-1)) != 0
	return value >> amount, carryOut
}

func shiftASR(value uint32, amount uint8, carryIn bool, immediate bool) (uint32, bool) {
	signed := int32(value)
	if amount == 0 {
		if immediate {
			// ASR#0 == ASR#32
			if signed < 0 {
				return 0xFFFF_FFFF, true
			}
			return 0, false
		}
		return value, carryIn
	}
	if amount >= 32 {
		if signed < 0 {
			return 0xFFFF_FFFF, true
		}
		return 0, false
	}
	carryOut := value&(1<<(amount-1)) != 0
	return uint32(signed >> amount), carryOut
}

func shiftROR(value uint32, amount uint8, carryIn bool, immediate bool) (uint32, bool) {
	if amount == 0 {
		if immediate {
			// ROR#0 == RRX: rotate right through carry by one bit.
			result := value >> 1
			if carryIn {
				result |= 0x8000_0000
			}
			return result, value&1 != 0
		}
		return value, carryIn
	}
	amount &= 31
	if amount == 0 {
		return value, value&0x8000_0000 != 0
	}
	result := (value >> amount) | (value << (32 - amount))
	carryOut := result&0x8000_0000 != 0
	return result, carryOut
}
