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

package monitor

// Reads runes from a reader on a goroutine and delivers them over a
// channel, so the command loop can select between new input and
// other events instead of blocking on ReadRune.

import (
	"bufio"
	"io"
)

type readRune struct {
	r   rune
	n   int
	err error
}

type runeReader chan readRune

func initRuneReader(reader io.Reader) runeReader {
	bufReader := bufio.NewReader(reader)
	ch := make(runeReader)
	go func() {
		var rr readRune
		for {
			rr.r, rr.n, rr.err = bufReader.ReadRune()
			ch <- rr
		}
	}()
	return ch
}
