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

// FeatureReq is used to request the setting of an orchestrator
// attribute, e.g. a pause request from the frontend.
type FeatureReq string

// FeatureReqData represents the information associated with a
// FeatureReq. See commentary for the defined FeatureReq values for
// the underlying type.
type FeatureReqData interface{}

// List of valid feature requests.
const (
	// request that the orchestrator pause (true) or resume (false).
	ReqSetPause FeatureReq = "ReqSetPause" // bool

	// request input bitmask change
	ReqSetInput FeatureReq = "ReqSetInput" // uint32
)

// UnsupportedEmulationFeature is the sentinel error message returned
// if the orchestrator does not support a requested feature.
const UnsupportedEmulationFeature = "unsupported emulation feature: %v"
