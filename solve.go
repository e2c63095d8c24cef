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

import (
	"math"

	"github.com/sirupsen/logrus"
)

// SolveInput holds the per-organ inputs of one steady-state solve.
type SolveInput struct {
	Organ OrganType

	// Width is the characteristic dimension for forced convection (m).
	Width float64

	// Height is the organ height above soil (m).
	Height float64

	// CanopyHeight is the total canopy height (m).
	CanopyHeight float64

	// PAR is the absorbed PAR (µmol m-2 s-1).
	PAR float64

	// SLN is the photosynthetic capacity driver (g N m-2); see
	// Params.CapacityDriver.
	SLN float64
}

// Output is the steady-state result of one organ solve.
type Output struct {
	Ag  float64 // gross assimilation (µmol m-2 s-1)
	An  float64 // net assimilation (µmol m-2 s-1)
	Rd  float64 // respiration in light (µmol m-2 s-1)
	Tr  float64 // transpiration (mmol m-2 s-1)
	Ts  float64 // organ temperature (°C)
	Gsw float64 // stomatal conductance to water vapour (mol m-2 s-1)
}

// Solver finds the steady-state organ temperature and internal CO2 of
// one organ by successive substitution: photosynthesis depends on Ts
// and Ci, conductance on photosynthesis, Ci on conductance, and Ts on
// conductance-driven transpiration. Each call to Solve is stateless and
// independent, so one Solver may be shared by concurrent solves as long
// as its Params are not mutated meanwhile.
type Solver struct {
	Params *Params

	// Log receives the advisory non-convergence diagnostics. Never
	// fatal: the solve proceeds with the last computed values.
	Log logrus.FieldLogger
}

// NewSolver returns a Solver using the given parameter table and the
// standard logger.
func NewSolver(p *Params) *Solver {
	return &Solver{Params: p, Log: logrus.StandardLogger()}
}

// Solve runs the coupled (Ts, Ci) fixed-point iteration for one organ
// under the given weather and returns the steady-state outputs.
//
// Ci starts at 0.7 times ambient CO2 and Ts at air temperature.
// Convergence requires the relative change of both Ci and Ts over one
// iteration to fall below Params.DeltaConvergence; the iteration stops
// unconditionally after Params.MaxIterations, logging which quantity
// failed to converge.
func (s *Solver) Solve(in SolveInput, w Weather) Output {
	p := s.Params

	ci, ts := 0.7*w.AmbientCO2, w.Ta
	var ag, an, rd, gsw, tr float64
	count := 0

	for {
		prevCi, prevTs := ci, ts

		ag, an, rd = p.Photosynthesis(in.PAR, in.SLN, ts, ci)
		gsw = p.StomatalConductance(ag, an, in.SLN, w.AmbientCO2, w.RH)
		ci = p.InternalCO2(w.AmbientCO2, an, gsw)
		ts, tr = p.EnergyBalance(in.Organ, in.Width, in.Height, in.CanopyHeight,
			w.Ur, in.PAR, gsw, w.Ta, ts, w.RH)
		count++

		if count >= p.MaxIterations {
			if math.Abs((ci-prevCi)/prevCi) >= p.DeltaConvergence {
				s.Log.WithFields(logrus.Fields{
					"organ":   in.Organ.String(),
					"prec_Ci": prevCi,
					"Ci":      ci,
				}).Warn("farquharwheat: Ci cannot converge")
			}
			if prevTs != 0 && math.Abs((ts-prevTs)/prevTs) >= p.DeltaConvergence {
				s.Log.WithFields(logrus.Fields{
					"organ":   in.Organ.String(),
					"prec_Ts": prevTs,
					"Ts":      ts,
				}).Warn("farquharwheat: Ts cannot converge")
			}
			break
		}
		// The prevTs == 0 equality path guards the relative test against
		// a zero previous temperature. Organ temperature is in °C and
		// can legitimately sit at zero, so this can mask slow
		// convergence at exactly 0 °C; kept as-is, a known sharp edge.
		if math.Abs((ci-prevCi)/prevCi) < p.DeltaConvergence &&
			((prevTs == 0 && ts-prevTs == 0) || math.Abs((ts-prevTs)/prevTs) < p.DeltaConvergence) {
			break
		}
	}

	return finalize(p, in.Organ, ag, an, rd, tr, ts, gsw)
}

// finalize applies the terminal unit conversion and organ-type
// adjustment: transpiration goes from mm s-1 to mmol m-2 s-1 (1 mm =
// 1 kg m-2), and non-blade organs take the stem-efficiency discount on
// gross assimilation.
func finalize(p *Params, organ OrganType, ag, an, rd, tr, ts, gsw float64) Output {
	tr = (tr * 1e6) / mmWater
	if organ.Stem() {
		ag *= p.EfficiencyStem
	}
	return Output{Ag: ag, An: an, Rd: rd, Tr: tr, Ts: ts, Gsw: gsw}
}
