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

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMainLoopRequiresAPath(t *testing.T) {
	if err := mainLoop(nil); err == nil {
		t.Fatal("expected an error with no path given")
	}
}

func TestMainLoopRejectsMissingFile(t *testing.T) {
	if err := mainLoop([]string{"debug", "/no/such/file.3dsx"}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestMainLoopRejectsMalformedImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.3dsx")
	if err := os.WriteFile(path, []byte("not a 3dsx"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := mainLoop([]string{"debug", path}); err == nil {
		t.Fatal("expected an error for a malformed image")
	}
}

func TestMainLoopShowsHelpWithoutError(t *testing.T) {
	if err := mainLoop([]string{"-help"}); err != nil {
		t.Fatalf("did not expect an error from -help, got %v", err)
	}
}
