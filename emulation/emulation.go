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

package emulation

// State indicates the orchestrator's lifecycle state.
type State int

// List of possible orchestrator states.
const (
	Initialising State = iota
	Running
	Paused
	Stepping
	Rewinding
	Ending
)

// Runtime is a minimal abstraction of the top-level orchestrator.
// Exists mainly so the monitor and frontend packages don't need to
// import runtime directly (and risk a cycle back into monitor/
// frontend helpers the orchestrator itself might want).
type Runtime interface {
	State() State
	Pause(set bool)
}

// Event describes something that happened in the emulation outside
// the scope of a single frame step, that a host frontend may want to
// react to.
type Event int

// List of currently defined events.
const (
	EventPause Event = iota
	EventRun
	EventReset
	EventHalted
)
