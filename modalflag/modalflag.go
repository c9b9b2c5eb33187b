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

// Package modalflag wraps the standard flag package with the notion
// of a sub-mode (e.g. "run" vs "debug"), used by cmd/citrine3ds to
// dispatch its CLI.
package modalflag

import (
	"flag"
	"fmt"
	"io"
)

// ParseAction is returned by Parse to tell the caller what to do next.
type ParseAction int

const (
	// ParseContinue means flags were parsed successfully and the
	// caller should proceed.
	ParseContinue ParseAction = iota

	// ParseHelp means help text was printed and the caller should
	// exit without error.
	ParseHelp
)

// Modes wraps a flag.FlagSet with sub-mode support.
type Modes struct {
	Output io.Writer

	set       *flag.FlagSet
	args      []string
	modes     []string
	mode      string
	path      string
	helpSet   bool
	remaining []string
}

// NewArgs resets the Modes with a new argument list, ready for
// AddBool/AddSubModes/Parse.
func (md *Modes) NewArgs(args []string) {
	md.set = flag.NewFlagSet("", flag.ContinueOnError)
	md.set.SetOutput(io.Discard)
	md.args = args
	md.modes = nil
	md.mode = ""
	md.path = ""
	md.helpSet = false
	md.set.BoolVar(&md.helpSet, "help", false, "show this help message")
}

// AddBool adds a boolean flag, returning a pointer to its value.
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.set.Bool(name, value, usage)
}

// AddSubModes declares the available sub-modes for this level. The
// first mode is the default.
func (md *Modes) AddSubModes(modes ...string) {
	md.modes = modes
}

// Mode returns the sub-mode selected by Parse, or "" if none was
// declared/selected.
func (md *Modes) Mode() string {
	return md.mode
}

// Path returns the dot-separated path of sub-modes selected so far.
func (md *Modes) Path() string {
	return md.path
}

// RemainingArgs returns the arguments left over after flag and mode
// parsing, with any consumed sub-mode name already stripped.
func (md *Modes) RemainingArgs() []string {
	return md.remaining
}

func (md *Modes) printHelp() {
	if len(flagNames(md.set)) == 0 && len(md.modes) == 0 {
		fmt.Fprint(md.Output, "No help available\n")
		return
	}

	fmt.Fprint(md.Output, "Usage:\n")

	names := flagNames(md.set)
	if len(names) > 0 {
		w := flag.NewFlagSet("", flag.ContinueOnError)
		w.SetOutput(md.Output)
		md.set.VisitAll(func(f *flag.Flag) {
			if f.Name == "help" {
				return
			}
			w.Var(f.Value, f.Name, f.Usage)
		})
		w.PrintDefaults()
	}

	if len(md.modes) > 0 {
		if len(names) > 0 {
			fmt.Fprint(md.Output, "\n")
		}
		fmt.Fprintf(md.Output, "  available sub-modes: %s\n", joinComma(md.modes))
		fmt.Fprintf(md.Output, "    default: %s\n", md.modes[0])
	}
}

func flagNames(set *flag.FlagSet) []string {
	var names []string
	set.VisitAll(func(f *flag.Flag) {
		if f.Name == "help" {
			return
		}
		names = append(names, f.Name)
	})
	return names
}

func joinComma(s []string) string {
	out := ""
	for i, v := range s {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}

// Parse parses the current argument list.
func (md *Modes) Parse() (ParseAction, error) {
	if err := md.set.Parse(md.args); err != nil {
		return ParseContinue, err
	}

	if md.helpSet {
		md.printHelp()
		return ParseHelp, nil
	}

	md.remaining = md.set.Args()

	if len(md.modes) > 0 {
		md.mode = md.modes[0]
		rem := md.remaining
		if len(rem) > 0 {
			for _, m := range md.modes {
				if m == rem[0] {
					md.mode = m
					md.remaining = rem[1:]
					break
				}
			}
		}
		md.path = md.mode
	}

	return ParseContinue, nil
}
