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
	"fmt"
	"os"

	"github.com/citrine3ds/citrine3ds/frontend/sdl"
	"github.com/citrine3ds/citrine3ds/modalflag"
	"github.com/citrine3ds/citrine3ds/monitor"
	"github.com/citrine3ds/citrine3ds/runtime"
)

func main() {
	if err := mainLoop(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// mainLoop parses the command line, loads the requested 3DSX, and
// dispatches to either the SDL front end ("run", the default) or the
// terminal monitor ("debug"). Unlike gopher2600.go's many GUI/terminal
// permutations, there are exactly two surfaces here, so a single
// top-level Modes suffices; no nested sub-mode dispatch is needed.
func mainLoop(args []string) error {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	md.AddSubModes("run", "debug")

	action, err := md.Parse()
	if err != nil {
		return err
	}
	if action == modalflag.ParseHelp {
		return nil
	}

	rem := md.RemainingArgs()
	if len(rem) < 1 {
		return fmt.Errorf("usage: citrine3ds [run|debug] <path.3dsx>")
	}

	data, err := os.ReadFile(rem[0])
	if err != nil {
		return fmt.Errorf("could not read %s: %w", rem[0], err)
	}

	emu := runtime.New()
	if !emu.Load3DSX(data) {
		return fmt.Errorf("%s is not a valid 3DSX image", rem[0])
	}

	switch md.Mode() {
	case "debug":
		err = runDebug(emu)
	default:
		err = runFrontend(emu)
	}

	emu.Logger.Write(os.Stderr)
	return err
}

// runFrontend drives emu from an SDL2 window pair until the user
// closes it. Must run on the main OS thread, same constraint SDL
// itself imposes on sdlplay.Run in the teacher.
func runFrontend(emu *runtime.Emulator) error {
	f, err := sdl.NewFrontend(emu)
	if err != nil {
		return err
	}
	defer f.Destroy()

	for !f.Quit() {
		f.Service()
	}
	return nil
}

// runDebug drives emu from the interactive terminal monitor.
func runDebug(emu *runtime.Emulator) error {
	m := monitor.New(emu)
	if err := m.Initialise(); err != nil {
		return err
	}
	defer m.CleanUp()

	return m.Run()
}
