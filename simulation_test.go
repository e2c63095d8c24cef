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
	"reflect"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

// testWeather mirrors the conditions of the reference data set used to
// calibrate the model (Ljutovac, 2002).
var testWeather = Weather{Ta: 18.8, AmbientCO2: 360, RH: 0.68, Ur: 3.171, PARi: 500}

// testInputs returns a main stem of 12 elements from flag leaf to ear,
// one tiller element (skipped by the main-stem filter) and one hidden
// element without resolved geometry (solver bypass).
func testInputs() (map[ElementID]*ElementInput, map[AxisID]*AxisInput) {
	elements := map[ElementID]*ElementInput{
		{1, "MS", 9, Blade, Visible}:      {Organ: Blade, Width: 0.018, Height: 0.321, PARa: 43, Na: 0.791228},
		{1, "MS", 9, Sheath, Visible}:     {Organ: Sheath, Width: 0.0036, Height: 0.186, PARa: 7.2, Na: 1.054703},
		{1, "MS", 10, Blade, Visible}:     {Organ: Blade, Width: 0.018, Height: 0.43, PARa: 140, Na: 1.15},
		{1, "MS", 10, Internode, Hidden}:  {Organ: Internode, Width: 0.0023, Height: math.NaN(), PARa: 0.7, Na: 2.26},
		{1, "MS", 10, Sheath, Visible}:    {Organ: Sheath, Width: 0.0034, Height: 0.297, PARa: 25, Na: 1.96},
		{1, "MS", 11, Blade, Visible}:     {Organ: Blade, Width: 0.018, Height: 0.599, PARa: 590, Na: 1.89711},
		{1, "MS", 11, Internode, Visible}: {Organ: Internode, Width: 0.0034, Height: 0.388, PARa: 47, Na: 1.584906},
		{1, "MS", 11, Sheath, Visible}:    {Organ: Sheath, Width: 0.0026, Height: 0.482, PARa: 147, Na: 4.446667},
		{1, "MS", 12, Peduncle, Hidden}:   {Organ: Peduncle, Width: 0.003, Height: 0.482, PARa: math.NaN(), STAR: 0.03, Na: 1.773585},
		{1, "MS", 12, Peduncle, Visible}:  {Organ: Peduncle, Width: 0.003, Height: 0.58, PARa: 299, Na: 1.768919},
		{1, "MS", 13, Ear, Visible}:       {Organ: Ear, Width: 0.0102, Height: 0.654, PARa: 684, Na: 6.746667},
		{1, "MS", 8, Blade, Visible}:      {Organ: Blade, Width: 0.018, Height: 0.25, PARa: 12, Na: 0.65},

		{1, "T1", 5, Blade, Visible}: {Organ: Blade, Width: 0.018, Height: 0.3, PARa: 100, Na: 1.2},
	}
	axes := map[AxisID]*AxisInput{
		{1, "MS"}: {SAMTemperature: 17.5, HeightCanopy: 0.7},
		{1, "T1"}: {SAMTemperature: 17.5, HeightCanopy: 0.7},
	}
	return elements, axes
}

func testSimulation(t *testing.T) (*Simulation, *test.Hook) {
	t.Helper()
	sim, err := NewSimulation(DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	logger, hook := test.NewNullLogger()
	sim.Log = logger
	sim.Initialize(testInputs())
	return sim, hook
}

func TestSimulationRun(t *testing.T) {
	sim, _ := testSimulation(t)

	outputs, err := sim.Run(testWeather)
	if err != nil {
		t.Fatal(err)
	}

	if len(outputs) != 12 {
		t.Errorf("expected 12 main-stem outputs, got %d", len(outputs))
	}
	if _, ok := outputs[ElementID{1, "T1", 5, Blade, Visible}]; ok {
		t.Error("tiller elements must be skipped")
	}

	// The element without resolved geometry bypasses the solver and
	// inherits the SAM temperature of its axis.
	bypass, ok := outputs[ElementID{1, "MS", 10, Internode, Hidden}]
	if !ok {
		t.Fatal("missing output for the hidden internode")
	}
	if bypass.Ag != 0 || bypass.An != 0 || bypass.Rd != 0 || bypass.Tr != 0 || bypass.Gsw != 0 {
		t.Errorf("bypassed element should have zero outputs: %+v", bypass)
	}
	if bypass.Ts != 17.5 {
		t.Errorf("bypassed element Ts = %g, want the SAM temperature 17.5", bypass.Ts)
	}

	for id, out := range outputs {
		if id == (ElementID{1, "MS", 10, Internode, Hidden}) {
			continue
		}
		if out.Ag < 0 {
			t.Errorf("%v: negative Ag %g", id, out.Ag)
		}
		if out.An > out.Ag {
			t.Errorf("%v: An = %g above Ag = %g", id, out.An, out.Ag)
		}
		if out.Gsw < sim.Params.GSMin {
			t.Errorf("%v: gsw = %g below the floor", id, out.Gsw)
		}
		for _, v := range []float64{out.Ag, out.An, out.Rd, out.Tr, out.Ts, out.Gsw} {
			if !finite(v) {
				t.Errorf("%v: non-finite output %+v", id, out)
				break
			}
		}
		// Pass-through geometry for downstream consumers.
		if in := sim.Elements[id]; out.Width != in.Width {
			t.Errorf("%v: width not passed through", id)
		}
	}
}

// Two runs over the same inputs must be identical: the solves are
// stateless and their distribution over goroutines cannot change the
// result.
func TestSimulationDeterministic(t *testing.T) {
	sim, _ := testSimulation(t)

	first, err := sim.Run(testWeather)
	if err != nil {
		t.Fatal(err)
	}
	second, err := sim.Run(testWeather)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two identical runs differ")
	}
}

// An element that carries a STAR instead of an absorbed PAR uses
// STAR times the incident PAR of the weather record.
func TestSimulationSTARDerivedPAR(t *testing.T) {
	sim, _ := testSimulation(t)

	outputs, err := sim.Run(testWeather)
	if err != nil {
		t.Fatal(err)
	}
	fromSTAR := outputs[ElementID{1, "MS", 12, Peduncle, Hidden}]

	// Replace the STAR with the equivalent direct PARa; the result must
	// not change.
	in := sim.Elements[ElementID{1, "MS", 12, Peduncle, Hidden}]
	in.PARa = in.STAR * testWeather.PARi
	in.STAR = 0
	outputs, err = sim.Run(testWeather)
	if err != nil {
		t.Fatal(err)
	}
	if direct := outputs[ElementID{1, "MS", 12, Peduncle, Hidden}]; direct != fromSTAR {
		t.Errorf("STAR-derived PAR differs from direct PARa: %+v != %+v", fromSTAR, direct)
	}
}

func TestSimulationMissingAxis(t *testing.T) {
	sim, _ := testSimulation(t)
	delete(sim.Axes, AxisID{1, "MS"})

	if _, err := sim.Run(testWeather); err == nil {
		t.Error("expected an error for a missing axis input")
	}
}

func TestNewSimulationInvalidConfiguration(t *testing.T) {
	p := DefaultParams()
	p.ModelVersion = ModelVersion(42)
	if _, err := NewSimulation(p); err == nil {
		t.Error("expected a configuration error for an invalid model version")
	}
}

func TestSummarize(t *testing.T) {
	const testTolerance = 1.e-12

	outputs := map[ElementID]ElementOutput{
		{1, "MS", 9, Blade, Visible}:  {An: 10, Tr: 2, Ts: 20, Gsw: 0.3},
		{1, "MS", 10, Blade, Visible}: {An: 20, Tr: 4, Ts: 22, Gsw: 0.5},
	}

	sum := Summarize(outputs)
	if sum.Elements != 2 {
		t.Errorf("Elements = %d, want 2", sum.Elements)
	}
	if different(sum.TotalAn, 30, testTolerance) || different(sum.TotalTr, 6, testTolerance) {
		t.Errorf("totals: An=%g Tr=%g, want 30 and 6", sum.TotalAn, sum.TotalTr)
	}
	if different(sum.MeanAn, 15, testTolerance) || different(sum.MeanTs, 21, testTolerance) {
		t.Errorf("means: An=%g Ts=%g, want 15 and 21", sum.MeanAn, sum.MeanTs)
	}
	if different(sum.StdTs, math.Sqrt2, testTolerance) {
		t.Errorf("StdTs = %g, want sqrt(2)", sum.StdTs)
	}

	empty := Summarize(nil)
	if empty.Elements != 0 || empty.TotalAn != 0 {
		t.Errorf("empty summary should be zero: %+v", empty)
	}
}
