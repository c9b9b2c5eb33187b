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

// Package paths resolves a scratch-output directory for files this
// runtime writes on request (monitor snapshots, trace dumps). The
// runtime itself is stateless across invocations (spec.md §6); this
// is purely an opt-in convenience for the CLI and monitor.
package paths

import "path"

const resourceDir = ".citrine3ds"

// ResourcePath joins one or more path elements onto the resource
// directory. Empty elements are skipped.
func ResourcePath(elements ...string) (string, error) {
	p := resourceDir
	for _, e := range elements {
		if e == "" {
			continue
		}
		p = path.Join(p, e)
	}
	return p, nil
}
