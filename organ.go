/*
Copyright © 2026 the FarquharWheat authors.
This file is part of FarquharWheat.

FarquharWheat is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

FarquharWheat is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with FarquharWheat.  If not, see <http://www.gnu.org/licenses/>.
*/

package farquharwheat

import "fmt"

// OrganType identifies the class of a photosynthetic organ. The organ
// type selects the convective-transfer regime of the energy balance and
// whether the stem-efficiency discount applies to gross assimilation.
type OrganType int

// The organ types modeled by FarquharWheat.
const (
	Blade OrganType = iota
	Internode
	Sheath
	Peduncle
	Ear
)

var organNames = []string{"blade", "internode", "sheath", "peduncle", "ear"}

func (o OrganType) String() string {
	if o < 0 || int(o) >= len(organNames) {
		return fmt.Sprintf("OrganType(%d)", int(o))
	}
	return organNames[o]
}

// ParseOrganType converts an organ label to an OrganType.
func ParseOrganType(s string) (OrganType, error) {
	for i, name := range organNames {
		if s == name {
			return OrganType(i), nil
		}
	}
	return 0, fmt.Errorf("farquharwheat: unknown organ type %q", s)
}

// Cylindric reports whether forced convection around the organ follows
// the vertical-cylinder regime. Blades are horizontal planes; every
// other organ is treated as a cylinder.
func (o OrganType) Cylindric() bool { return o != Blade }

// Stem reports whether the stem-efficiency discount applies to the
// organ's gross assimilation.
func (o OrganType) Stem() bool { return o != Blade }

// Element visibility labels.
const (
	Visible = "visible"
	Hidden  = "hidden"
)

// MainStemLabel is the axis label of the main stem, the only axis for
// which photosynthesis is computed.
const MainStemLabel = "MS"

// AxisID locates an axis in the plant hierarchy.
type AxisID struct {
	Plant int
	Axis  string
}

// ElementID locates an organ element in the plant hierarchy. It is
// owned by the plant-architecture collaborator; the solver only carries
// it through to the outputs.
type ElementID struct {
	Plant   int
	Axis    string
	Metamer int
	Organ   OrganType
	Element string // Visible or Hidden
}

func (id ElementID) String() string {
	return fmt.Sprintf("%d_%s_%d_%s_%s", id.Plant, id.Axis, id.Metamer, id.Organ, id.Element)
}

// AxisID returns the axis the element belongs to.
func (id ElementID) AxisID() AxisID {
	return AxisID{Plant: id.Plant, Axis: id.Axis}
}

// less orders element IDs by plant, axis, metamer, organ and element,
// giving deterministic iteration and output ordering.
func (id ElementID) less(other ElementID) bool {
	switch {
	case id.Plant != other.Plant:
		return id.Plant < other.Plant
	case id.Axis != other.Axis:
		return id.Axis < other.Axis
	case id.Metamer != other.Metamer:
		return id.Metamer < other.Metamer
	case id.Organ != other.Organ:
		return id.Organ < other.Organ
	default:
		return id.Element < other.Element
	}
}

// ElementInput holds the per-element inputs of one solve, supplied by
// the plant-architecture and light-interception collaborators. Optional
// float fields use NaN to mark a missing value.
type ElementInput struct {
	Organ OrganType

	// Width is the characteristic dimension for forced convection (m):
	// blade width for laminae, diameter for cylindric organs.
	Width float64

	// Height is the organ height above soil (m). NaN means the element
	// has no resolved geometry; such elements bypass the solver and
	// inherit the axis SAM temperature.
	Height float64

	// PARa is the absorbed photosynthetically active radiation
	// (µmol m-2 s-1). If NaN, it is derived as STAR times the incident
	// PAR of the weather record.
	PARa float64

	// STAR is the ratio of exposed to total area, used to derive PARa
	// from incident PAR when PARa is not supplied directly.
	STAR float64

	// Na is the surfacic nitrogen content (g m-2). If NaN, it is
	// derived from the nitrogen pools below according to the model
	// version.
	Na float64

	// Nitrogen pools (µmol N) and structural nitrogen (g).
	Nitrates   float64
	AminoAcids float64
	Proteins   float64
	Nstruct    float64

	// GreenArea is the photosynthetic area of the element (m2).
	GreenArea float64

	// Carbohydrate pools (µmol C), used by the retro-inhibition model
	// version.
	Sucrose float64
	Starch  float64
	Fructan float64
}

// AxisInput holds the per-axis inputs shared by the elements of one
// axis.
type AxisInput struct {
	// SAMTemperature is the temperature of the apical meristem (°C),
	// inherited by elements without resolved geometry.
	SAMTemperature float64

	// HeightCanopy is the total canopy height (m).
	HeightCanopy float64
}

// Weather holds the ambient drivers shared by every element during one
// time step.
type Weather struct {
	Ta         float64 // air temperature (°C)
	AmbientCO2 float64 // air CO2 (µmol mol-1)
	RH         float64 // relative humidity (decimal fraction)
	Ur         float64 // wind speed at the reference height (m s-1)

	// PARi is the incident PAR at the top of the canopy (µmol m-2 s-1),
	// used only for elements that carry a STAR instead of an absorbed
	// PAR.
	PARi float64
}

// ElementOutput holds the outputs of one element solve. Width and
// Height are passed through for downstream geometry consumers.
type ElementOutput struct {
	Ag     float64 // gross assimilation (µmol m-2 s-1)
	An     float64 // net assimilation (µmol m-2 s-1)
	Rd     float64 // mitochondrial respiration in light (µmol m-2 s-1)
	Tr     float64 // transpiration (mmol m-2 s-1)
	Ts     float64 // organ temperature (°C)
	Gsw    float64 // stomatal conductance to water vapour (mol m-2 s-1)
	Width  float64
	Height float64
}
