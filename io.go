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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/spf13/cast"
)

// Tabular adapter: CSV representations of the element inputs, axis
// inputs and element outputs, one row per element or axis. These are
// the file-facing counterparts of the Simulation input and output maps.

// The identity columns of an element row.
var elementKeyColumns = []string{"plant", "axis", "metamer", "organ", "element"}

// The output columns written by WriteOutputs, after the identity
// columns.
var outputColumns = []string{"Ag", "An", "Rd", "Tr", "Ts", "gs", "width", "height"}

type csvTable struct {
	header map[string]int
	row    []string
	line   int
}

// field returns the raw cell for col, or "" if the column is absent.
func (t *csvTable) field(col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(t.row) {
		return ""
	}
	return t.row[i]
}

// float parses a mandatory numeric cell.
func (t *csvTable) float(col string) (float64, error) {
	v, err := cast.ToFloat64E(t.field(col))
	if err != nil {
		return 0, fmt.Errorf("line %d, column %s: %v", t.line, col, err)
	}
	return v, nil
}

// optFloat parses a numeric cell, mapping an absent column or empty
// cell to NaN.
func (t *csvTable) optFloat(col string) (float64, error) {
	if t.field(col) == "" {
		return math.NaN(), nil
	}
	return t.float(col)
}

// zeroFloat parses a numeric cell, mapping an absent column or empty
// cell to zero.
func (t *csvTable) zeroFloat(col string) (float64, error) {
	if t.field(col) == "" {
		return 0, nil
	}
	return t.float(col)
}

// intField parses a mandatory integer cell.
func (t *csvTable) intField(col string) (int, error) {
	v, err := cast.ToIntE(t.field(col))
	if err != nil {
		return 0, fmt.Errorf("line %d, column %s: %v", t.line, col, err)
	}
	return v, nil
}

func readTable(r io.Reader, required []string, row func(*csvTable) error) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("empty table")
	}
	header := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		header[col] = i
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return fmt.Errorf("missing column %s", col)
		}
	}
	t := &csvTable{header: header}
	for i, rec := range records[1:] {
		t.row, t.line = rec, i+2
		if err := row(t); err != nil {
			return err
		}
	}
	return nil
}

// ReadElements reads per-element inputs from CSV data with one row per
// element. The identity columns (plant, axis, metamer, organ, element)
// and width are mandatory; height, PARa, STAR, Na and the nitrogen and
// carbohydrate pool columns are optional, with empty cells mapping to
// NaN (height, PARa, Na) or zero (the pools).
func ReadElements(r io.Reader) (map[ElementID]*ElementInput, error) {
	elements := make(map[ElementID]*ElementInput)
	required := append(append([]string{}, elementKeyColumns...), "width")
	err := readTable(r, required, func(t *csvTable) error {
		organ, err := ParseOrganType(t.field("organ"))
		if err != nil {
			return fmt.Errorf("line %d: %v", t.line, err)
		}
		id := ElementID{Axis: t.field("axis"), Organ: organ, Element: t.field("element")}
		if id.Plant, err = t.intField("plant"); err != nil {
			return err
		}
		if id.Metamer, err = t.intField("metamer"); err != nil {
			return err
		}

		in := &ElementInput{Organ: organ}
		fields := []struct {
			dst   *float64
			col   string
			parse func(string) (float64, error)
		}{
			{&in.Width, "width", t.float},
			{&in.Height, "height", t.optFloat},
			{&in.PARa, "PARa", t.optFloat},
			{&in.STAR, "STAR", t.zeroFloat},
			{&in.Na, "Na", t.optFloat},
			{&in.Nitrates, "nitrates", t.zeroFloat},
			{&in.AminoAcids, "amino_acids", t.zeroFloat},
			{&in.Proteins, "proteins", t.zeroFloat},
			{&in.Nstruct, "Nstruct", t.zeroFloat},
			{&in.GreenArea, "green_area", t.zeroFloat},
			{&in.Sucrose, "sucrose", t.zeroFloat},
			{&in.Starch, "starch", t.zeroFloat},
			{&in.Fructan, "fructan", t.zeroFloat},
		}
		for _, f := range fields {
			if *f.dst, err = f.parse(f.col); err != nil {
				return err
			}
		}
		elements[id] = in
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("farquharwheat: reading elements: %v", err)
	}
	return elements, nil
}

// ReadAxes reads per-axis inputs from CSV data with one row per axis.
// The columns plant, axis, SAM_temperature and height_canopy are
// mandatory.
func ReadAxes(r io.Reader) (map[AxisID]*AxisInput, error) {
	axes := make(map[AxisID]*AxisInput)
	err := readTable(r, []string{"plant", "axis", "SAM_temperature", "height_canopy"}, func(t *csvTable) error {
		id := AxisID{Axis: t.field("axis")}
		var err error
		if id.Plant, err = t.intField("plant"); err != nil {
			return err
		}
		in := &AxisInput{}
		if in.SAMTemperature, err = t.float("SAM_temperature"); err != nil {
			return err
		}
		if in.HeightCanopy, err = t.float("height_canopy"); err != nil {
			return err
		}
		axes[id] = in
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("farquharwheat: reading axes: %v", err)
	}
	return axes, nil
}

// WriteOutputs writes per-element outputs as CSV with one row per
// element, ordered by plant, axis, metamer, organ and element. A NaN
// height is written as an empty cell.
func WriteOutputs(w io.Writer, outputs map[ElementID]ElementOutput) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, elementKeyColumns...), outputColumns...)); err != nil {
		return fmt.Errorf("farquharwheat: writing outputs: %v", err)
	}

	ids := make([]ElementID, 0, len(outputs))
	for id := range outputs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].less(ids[j]) })

	for _, id := range ids {
		out := outputs[id]
		row := []string{
			strconv.Itoa(id.Plant),
			id.Axis,
			strconv.Itoa(id.Metamer),
			id.Organ.String(),
			id.Element,
		}
		for _, v := range []float64{out.Ag, out.An, out.Rd, out.Tr, out.Ts, out.Gsw, out.Width, out.Height} {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("farquharwheat: writing outputs: %v", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("farquharwheat: writing outputs: %v", err)
	}
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
