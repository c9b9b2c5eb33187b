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

package errors_test

import (
	"fmt"
	"testing"

	"github.com/citrine3ds/citrine3ds/errors"
	"github.com/citrine3ds/citrine3ds/test"
)

func TestDuplicateErrors(t *testing.T) {
	e := errors.Errorf(errors.BadMagic)
	test.Equate(t, e.Error(), "loader: bad magic number")

	// only identical adjacent leading parts are collapsed; here the
	// leading parts differ ("loader" then "malformed executable"), so
	// every part is kept
	f := errors.Errorf(errors.MalformedExecutable, e)
	test.Equate(t, f.Error(), "loader: malformed executable: loader: bad magic number")
}

func TestIs(t *testing.T) {
	e := errors.Errorf(errors.UnknownPort, "nope:")
	test.ExpectSuccess(t, errors.Is(e, errors.UnknownPort))
	test.ExpectFailure(t, errors.Is(e, errors.InvalidHandle))

	f := errors.Errorf(errors.MonitorCommand, e)
	test.ExpectSuccess(t, errors.Is(f, errors.MonitorCommand))
	test.ExpectSuccess(t, errors.Has(f, errors.UnknownPort))

	test.ExpectSuccess(t, errors.IsAny(e))
	test.ExpectSuccess(t, errors.IsAny(f))
}

func TestPlainErrors(t *testing.T) {
	e := fmt.Errorf("plain test error")
	test.ExpectFailure(t, errors.IsAny(e))
	test.ExpectFailure(t, errors.Has(e, errors.BadMagic))
}

func TestHead(t *testing.T) {
	e := errors.Errorf(errors.ThreadCapacity, 32)
	test.Equate(t, errors.Head(e), errors.ThreadCapacity)

	plain := fmt.Errorf("boom")
	test.Equate(t, errors.Head(plain), "boom")
}
