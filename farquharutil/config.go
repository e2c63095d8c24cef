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

package farquharutil

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	farquharwheat "github.com/openalea-incubator/farquhar-wheat"
)

// Params builds the model parameter table from the configuration:
// the default table, the model-version selector, and the optional TOML
// parameter-override file. Configuration errors here are fatal; they
// are checked once per configuration load, never per organ.
func Params(cfg *viper.Viper) (*farquharwheat.Params, error) {
	p := farquharwheat.DefaultParams()

	version, err := farquharwheat.ParseModelVersion(cfg.GetString("ModelVersion"))
	if err != nil {
		return nil, err
	}
	p.ModelVersion = version

	if paramsFile := os.ExpandEnv(cfg.GetString("ParamsFile")); paramsFile != "" {
		overrides := make(map[string]float64)
		if _, err := toml.DecodeFile(paramsFile, &overrides); err != nil {
			return nil, fmt.Errorf("farquharwheat: problem reading parameter file: %v", err)
		}
		if err := p.ApplyOverrides(overrides); err != nil {
			return nil, err
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Weather builds the ambient drivers shared by every element of the
// time step from the configuration.
func Weather(cfg *viper.Viper) (farquharwheat.Weather, error) {
	var w farquharwheat.Weather
	fields := []struct {
		dst *float64
		key string
	}{
		{&w.Ta, "Weather.Ta"},
		{&w.AmbientCO2, "Weather.AmbientCO2"},
		{&w.RH, "Weather.RH"},
		{&w.Ur, "Weather.Ur"},
		{&w.PARi, "Weather.PARi"},
	}
	for _, f := range fields {
		v, err := cast.ToFloat64E(cfg.Get(f.key))
		if err != nil {
			return w, fmt.Errorf("farquharwheat: configuration variable %s: %v", f.key, err)
		}
		*f.dst = v
	}
	if w.RH < 0 || w.RH > 1 {
		return w, fmt.Errorf("farquharwheat: Weather.RH must be a decimal fraction in [0, 1], got %g", w.RH)
	}
	return w, nil
}

// Run executes one time step of the model from the configuration:
// read inputs, solve every main-stem element, write outputs.
func Run(cfg *viper.Viper) error {
	log := logrus.StandardLogger()

	p, err := Params(cfg)
	if err != nil {
		return err
	}
	w, err := Weather(cfg)
	if err != nil {
		return err
	}

	elementsFile, err := os.Open(os.ExpandEnv(cfg.GetString("ElementsFile")))
	if err != nil {
		return fmt.Errorf("farquharwheat: problem opening elements file: %v", err)
	}
	defer elementsFile.Close()
	elements, err := farquharwheat.ReadElements(elementsFile)
	if err != nil {
		return err
	}

	axesFile, err := os.Open(os.ExpandEnv(cfg.GetString("AxesFile")))
	if err != nil {
		return fmt.Errorf("farquharwheat: problem opening axes file: %v", err)
	}
	defer axesFile.Close()
	axes, err := farquharwheat.ReadAxes(axesFile)
	if err != nil {
		return err
	}

	sim, err := farquharwheat.NewSimulation(p)
	if err != nil {
		return err
	}
	sim.Initialize(elements, axes)
	sim.Log = log

	log.WithFields(logrus.Fields{
		"elements":     len(elements),
		"modelVersion": p.ModelVersion.String(),
	}).Info("farquharwheat: running")

	outputs, err := sim.Run(w)
	if err != nil {
		return err
	}

	sum := farquharwheat.Summarize(outputs)
	log.WithFields(logrus.Fields{
		"elements": sum.Elements,
		"totalAn":  sum.TotalAn,
		"meanTs":   sum.MeanTs,
	}).Info("farquharwheat: finished")

	outputFile, err := os.Create(os.ExpandEnv(cfg.GetString("OutputFile")))
	if err != nil {
		return fmt.Errorf("farquharwheat: problem creating output file: %v", err)
	}
	defer outputFile.Close()
	return farquharwheat.WriteOutputs(outputFile, outputs)
}
