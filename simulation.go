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
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Simulation is the front end that runs the solver once per element for
// one time step. Inputs are set fresh before each run; nothing persists
// between time steps besides the parameter table.
type Simulation struct {
	Params *Params

	// Elements holds the per-element inputs, keyed by location in the
	// plant hierarchy.
	Elements map[ElementID]*ElementInput

	// Axes holds the per-axis inputs.
	Axes map[AxisID]*AxisInput

	// Log receives progress and diagnostic messages.
	Log logrus.FieldLogger
}

// NewSimulation returns a Simulation for the given parameter table,
// failing on configuration errors.
func NewSimulation(p *Params) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Simulation{
		Params:   p,
		Elements: make(map[ElementID]*ElementInput),
		Axes:     make(map[AxisID]*AxisInput),
		Log:      logrus.StandardLogger(),
	}, nil
}

// Initialize replaces the simulation inputs with the given element and
// axis inputs.
func (s *Simulation) Initialize(elements map[ElementID]*ElementInput, axes map[AxisID]*AxisInput) {
	s.Elements = elements
	s.Axes = axes
}

// Run computes the steady-state outputs of every main-stem element
// under the given weather. Each element solve is independent, so the
// elements are distributed over GOMAXPROCS goroutines; results come
// back keyed by element identity.
//
// Elements on axes other than the main stem are skipped. Elements
// without a resolved height bypass the solver: their outputs are zero
// except Ts, which is inherited from the axis SAM temperature.
func (s *Simulation) Run(w Weather) (map[ElementID]ElementOutput, error) {
	ids := sortedElementIDs(s.Elements)

	// Filter to the main stem before distributing the work.
	n := 0
	for _, id := range ids {
		if id.Axis == MainStemLabel {
			ids[n] = id
			n++
		}
	}
	ids = ids[:n]

	results := make([]ElementOutput, len(ids))
	errs := make([]error, len(ids))

	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			solver := &Solver{Params: s.Params, Log: s.Log}
			for ii := pp; ii < len(ids); ii += nprocs {
				results[ii], errs[ii] = s.runElement(solver, ids[ii], w)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	outputs := make(map[ElementID]ElementOutput, len(ids))
	for ii, id := range ids {
		outputs[id] = results[ii]
	}
	return outputs, nil
}

// runElement solves a single element, applying the degenerate-organ
// bypass for elements without resolved geometry.
func (s *Simulation) runElement(solver *Solver, id ElementID, w Weather) (ElementOutput, error) {
	in := s.Elements[id]
	axis, ok := s.Axes[id.AxisID()]
	if !ok {
		return ElementOutput{}, fmt.Errorf("farquharwheat: element %v: no input for axis %d %s",
			id, id.Plant, id.Axis)
	}

	if math.IsNaN(in.Height) {
		// Hidden elements and elements too small to have resolved
		// geometry do not photosynthesize; they take the temperature of
		// the apical meristem of their axis.
		return ElementOutput{
			Ts:     axis.SAMTemperature,
			Width:  in.Width,
			Height: in.Height,
		}, nil
	}

	par := in.PARa
	if math.IsNaN(par) {
		par = in.STAR * w.PARi
	}

	out := solver.Solve(SolveInput{
		Organ:        in.Organ,
		Width:        in.Width,
		Height:       in.Height,
		CanopyHeight: axis.HeightCanopy,
		PAR:          par,
		SLN:          s.Params.CapacityDriver(in),
	}, w)

	return ElementOutput{
		Ag:     out.Ag,
		An:     out.An,
		Rd:     out.Rd,
		Tr:     out.Tr,
		Ts:     out.Ts,
		Gsw:    out.Gsw,
		Width:  in.Width,
		Height: in.Height,
	}, nil
}

func sortedElementIDs(elements map[ElementID]*ElementInput) []ElementID {
	ids := make([]ElementID, 0, len(elements))
	for id := range elements {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].less(ids[j]) })
	return ids
}

// Summary holds descriptive statistics of one time step's outputs.
type Summary struct {
	Elements int

	TotalAn float64 // sum of net assimilation rates (µmol m-2 s-1)
	TotalTr float64 // sum of transpiration rates (mmol m-2 s-1)

	MeanAn, StdAn   float64
	MeanTs, StdTs   float64
	MeanGsw, StdGsw float64
}

// Summarize computes descriptive statistics over a set of element
// outputs.
func Summarize(outputs map[ElementID]ElementOutput) Summary {
	var anStats, tsStats, gswStats stats.Stats
	an := make([]float64, 0, len(outputs))
	tr := make([]float64, 0, len(outputs))
	for _, out := range outputs {
		anStats.Update(out.An)
		tsStats.Update(out.Ts)
		gswStats.Update(out.Gsw)
		an = append(an, out.An)
		tr = append(tr, out.Tr)
	}
	sum := Summary{Elements: len(outputs)}
	if len(outputs) == 0 {
		return sum
	}
	sum.TotalAn = floats.Sum(an)
	sum.TotalTr = floats.Sum(tr)
	sum.MeanAn = anStats.Mean()
	sum.MeanTs = tsStats.Mean()
	sum.MeanGsw = gswStats.Mean()
	if len(outputs) > 1 {
		sum.StdAn = anStats.SampleStandardDeviation()
		sum.StdTs = tsStats.SampleStandardDeviation()
		sum.StdGsw = gswStats.SampleStandardDeviation()
	}
	return sum
}
