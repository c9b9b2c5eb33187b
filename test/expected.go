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

// Package test provides small test helpers shared across the module's
// package-level test suites, in place of a third-party assertion
// library.
package test

import (
	"math"
	"reflect"
	"testing"
)

func isFailure(val interface{}) bool {
	switch v := val.(type) {
	case bool:
		return !v
	case error:
		return v != nil
	case nil:
		return false
	default:
		return false
	}
}

// Equate fails the test if got and want are not equal.
func Equate(t *testing.T, got, want interface{}) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, wanted %v", got, want)
	}
}

// ExpectFailure fails the test unless val represents a failure (false,
// or a non-nil error).
func ExpectFailure(t *testing.T, val interface{}) {
	t.Helper()
	if !isFailure(val) {
		t.Errorf("expected failure, got %v", val)
	}
}

// ExpectSuccess fails the test unless val represents success (true,
// a nil error, or a literal nil).
func ExpectSuccess(t *testing.T, val interface{}) {
	t.Helper()
	if isFailure(val) {
		t.Errorf("expected success, got %v", val)
	}
}

// ExpectEquality fails the test unless a and b are equal.
func ExpectEquality(t *testing.T, a, b interface{}) {
	t.Helper()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected %v to equal %v", a, b)
	}
}

// ExpectInequality fails the test if a and b are equal.
func ExpectInequality(t *testing.T, a, b interface{}) {
	t.Helper()
	if reflect.DeepEqual(a, b) {
		t.Errorf("expected %v to not equal %v", a, b)
	}
}

// ExpectApproximate fails the test unless a and b differ by no more
// than tolerance.
func ExpectApproximate(t *testing.T, a, b float64, tolerance float64) {
	t.Helper()
	if math.Abs(a-b) > tolerance {
		t.Errorf("expected %v to be within %v of %v", a, tolerance, b)
	}
}
