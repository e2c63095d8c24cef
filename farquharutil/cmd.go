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

// Package farquharutil holds the configuration and command-line
// plumbing of the FarquharWheat model.
package farquharutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	farquharwheat "github.com/openalea-incubator/farquhar-wheat"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to FarquharWheat.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ElementsFile",
			usage: `
              ElementsFile is the path to the CSV file holding the per-element
              inputs (one row per organ element).`,
			defaultVal: "elements.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "AxesFile",
			usage: `
              AxesFile is the path to the CSV file holding the per-axis inputs
              (SAM temperature and canopy height, one row per axis).`,
			defaultVal: "axes.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the per-element outputs are written
              as CSV.`,
			defaultVal: "outputs.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ModelVersion",
			usage: `
              ModelVersion selects the nitrogen formulation: Barillot2016,
              SurfacicProteins or SurfacicProteins_Retroinhibition.`,
			defaultVal: "Barillot2016",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ParamsFile",
			usage: `
              ParamsFile is the optional path to a TOML file of parameter
              overrides applied to the default parameter table before the run.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Weather.Ta",
			usage: `
              Weather.Ta is the air temperature [°C].`,
			defaultVal: 15.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Weather.AmbientCO2",
			usage: `
              Weather.AmbientCO2 is the air CO2 concentration [µmol mol-1].`,
			defaultVal: 360.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Weather.RH",
			usage: `
              Weather.RH is the relative humidity [decimal fraction].`,
			defaultVal: 0.68,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Weather.Ur",
			usage: `
              Weather.Ur is the wind speed at the reference height [m s-1].`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Weather.PARi",
			usage: `
              Weather.PARi is the incident PAR at the top of the canopy
              [µmol m-2 s-1], used for elements that carry a STAR instead of
              an absorbed PAR.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FARQUHAR")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("farquharwheat: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "farquhar",
	Short: "A per-organ photosynthesis and energy-balance model for wheat.",
	Long: `FarquharWheat computes net CO2 assimilation, transpiration, stomatal
conductance and temperature for individual wheat organs, coupling the Farquhar
photosynthesis model, the Ball-Woodrow-Berry stomatal model and a
Penman-Monteith energy balance.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'FARQUHAR_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of FarquharWheat.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("FarquharWheat v%s\n", farquharwheat.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model for one time step",
	Long: `run reads the element and axis inputs, solves the steady-state
photosynthesis and energy balance of every main-stem element under the
configured weather, and writes the per-element outputs as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(Cfg)
	},
	DisableAutoGenTag: true,
}
