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
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func testSolver(p *Params) (*Solver, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return &Solver{Params: p, Log: logger}, hook
}

// A well-lit, well-fed blade must converge without diagnostics and
// produce positive assimilation.
func TestSolveScenario(t *testing.T) {
	s, hook := testSolver(DefaultParams())

	out := s.Solve(SolveInput{
		Organ:        Blade,
		Width:        0.018,
		Height:       0.6,
		CanopyHeight: 0.7,
		PAR:          500,
		SLN:          2.0,
	}, Weather{Ta: 20, AmbientCO2: 380, RH: 0.68, Ur: 2})

	if len(hook.Entries) != 0 {
		t.Errorf("expected convergence, got diagnostics: %v", hook.Entries)
	}
	if out.Ag <= 0 {
		t.Errorf("expected positive gross assimilation, got %g", out.Ag)
	}
	if out.An >= out.Ag {
		t.Errorf("An = %g should be below Ag = %g", out.An, out.Ag)
	}
	if out.Gsw < 0.05 {
		t.Errorf("gsw = %g below the dark floor", out.Gsw)
	}
	if out.Tr < 0 {
		t.Errorf("negative transpiration %g", out.Tr)
	}
	for _, v := range []float64{out.Ag, out.An, out.Rd, out.Tr, out.Ts, out.Gsw} {
		if !finite(v) {
			t.Fatalf("non-finite output: %+v", out)
		}
	}
}

// The solver carries no state between calls: identical inputs give
// identical outputs.
func TestSolveIdempotent(t *testing.T) {
	s, _ := testSolver(DefaultParams())

	in := SolveInput{Organ: Sheath, Width: 0.004, Height: 0.45, CanopyHeight: 0.7, PAR: 120, SLN: 1.2}
	w := Weather{Ta: 18.8, AmbientCO2: 360, RH: 0.68, Ur: 3.171}

	first := s.Solve(in, w)
	second := s.Solve(in, w)
	if first != second {
		t.Errorf("two identical solves differ: %+v != %+v", first, second)
	}
}

// Whatever the inputs, the solver terminates within the iteration cap
// and returns defined, finite outputs.
func TestSolveAlwaysTerminates(t *testing.T) {
	s, _ := testSolver(DefaultParams())
	w := Weather{Ta: 25, AmbientCO2: 380, RH: 0.4, Ur: 0} // wind at the clamp floor

	inputs := []SolveInput{
		{Organ: Blade, Width: 0.018, Height: 0.65, CanopyHeight: 0.7, PAR: 0, SLN: 2},
		{Organ: Blade, Width: 0.018, Height: 0.65, CanopyHeight: 0.7, PAR: 2000, SLN: 4},
		{Organ: Ear, Width: 0.0102, Height: 0.65, CanopyHeight: 0.7, PAR: 800, SLN: 6.7},
		{Organ: Internode, Width: 0.0034, Height: 0.3, CanopyHeight: 0.7, PAR: 20, SLN: 0.2},
	}
	for _, in := range inputs {
		out := s.Solve(in, w)
		for _, v := range []float64{out.Ag, out.An, out.Rd, out.Tr, out.Ts, out.Gsw} {
			if !finite(v) {
				t.Errorf("%s PAR=%g SLN=%g: non-finite output %+v", in.Organ, in.PAR, in.SLN, out)
				break
			}
		}
		if out.Ag < 0 {
			t.Errorf("%s: negative Ag %g", in.Organ, out.Ag)
		}
		if out.Gsw < s.Params.GSMin {
			t.Errorf("%s: gsw %g below floor", in.Organ, out.Gsw)
		}
	}
}

// In the dark there is no assimilation: the conductance sits exactly at
// the floor and Ci relaxes to ambient CO2.
func TestSolveDark(t *testing.T) {
	const testTolerance = 1.e-12
	s, hook := testSolver(DefaultParams())

	out := s.Solve(SolveInput{
		Organ: Blade, Width: 0.018, Height: 0.6, CanopyHeight: 0.7, PAR: 0, SLN: 2,
	}, Weather{Ta: 15, AmbientCO2: 360, RH: 0.8, Ur: 1})

	if len(hook.Entries) != 0 {
		t.Errorf("expected convergence in the dark, got diagnostics: %v", hook.Entries)
	}
	if out.Ag != 0 || out.An != 0 {
		t.Errorf("expected zero assimilation in the dark, got Ag=%g An=%g", out.Ag, out.An)
	}
	if different(out.Gsw, s.Params.GSMin, testTolerance) {
		t.Errorf("dark gsw = %g, want the floor %g", out.Gsw, s.Params.GSMin)
	}
	if out.Rd <= 0 {
		t.Errorf("expected positive dark respiration, got %g", out.Rd)
	}
}

// finalize converts transpiration to mmol m-2 s-1 and discounts the
// gross assimilation of non-blade organs by the stem efficiency.
func TestFinalize(t *testing.T) {
	const testTolerance = 1.e-12
	p := DefaultParams()

	const trInternal = 1.2e-3 // mm s-1

	blade := finalize(p, Blade, 10, 9, 1, trInternal, 21, 0.3)
	if different(blade.Tr, trInternal*1e6/18, testTolerance) {
		t.Errorf("Tr = %g, want %g", blade.Tr, trInternal*1e6/18)
	}
	if different(blade.Ag, 10, testTolerance) {
		t.Errorf("blade Ag = %g, want 10 (no discount)", blade.Ag)
	}

	for _, organ := range []OrganType{Internode, Sheath, Peduncle, Ear} {
		stem := finalize(p, organ, 10, 9, 1, trInternal, 21, 0.3)
		if different(stem.Ag, 10*p.EfficiencyStem, testTolerance) {
			t.Errorf("%s Ag = %g, want %g", organ, stem.Ag, 10*p.EfficiencyStem)
		}
		if stem.An != blade.An || stem.Rd != blade.Rd || stem.Tr != blade.Tr {
			t.Errorf("%s: discount must touch Ag only", organ)
		}
	}
}

// A non-converging configuration must stop at the iteration cap and
// report which quantity failed, without aborting.
func TestSolveNonConvergenceDiagnostic(t *testing.T) {
	p := DefaultParams()
	p.MaxIterations = 1 // force the cap before the loop can settle
	s, hook := testSolver(p)

	out := s.Solve(SolveInput{
		Organ: Blade, Width: 0.018, Height: 0.6, CanopyHeight: 0.7, PAR: 500, SLN: 2,
	}, Weather{Ta: 20, AmbientCO2: 380, RH: 0.68, Ur: 2})

	if len(hook.Entries) == 0 {
		t.Error("expected a non-convergence diagnostic")
	}
	for _, v := range []float64{out.Ag, out.An, out.Rd, out.Tr, out.Ts, out.Gsw} {
		if !finite(v) {
			t.Fatalf("best-effort outputs must still be defined: %+v", out)
		}
	}
}
