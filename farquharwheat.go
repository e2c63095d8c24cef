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

// Package farquharwheat computes net CO2 assimilation, transpiration,
// stomatal conductance and equilibrium temperature for individual
// photosynthetic wheat organs (blades, sheaths, internodes, peduncles,
// ears) given absorbed light, nitrogen status and ambient weather.
//
// Photosynthesis follows the biochemical model of Farquhar et al. (1980)
// with nitrogen and temperature regulation after Braune et al. (2009),
// stomatal conductance follows Ball, Woodrow and Berry (1987), and organ
// temperature is obtained from a Penman-Monteith energy balance. Organ
// temperature and internal CO2 depend on each other through conductance
// and transpiration, so the two are found jointly by fixed-point
// iteration (see Solver).
//
// Each solve is stateless and independent of every other organ, so a
// whole time step is computed concurrently across organs (see
// Simulation).
package farquharwheat

import (
	"fmt"
	"sort"
)

// Version gives the version number.
const Version = "1.0.0"

// Physical conversion constants.
const (
	kelvinDegree = 273.15 // conversion from °C to K
	mmWater      = 18.    // molar mass of water (g mol-1)
	nMolarMass   = 14.    // molar mass of nitrogen (g mol-1)
	cMolarMass   = 12.    // molar mass of carbon (g mol-1)

	// minWindSpeed is the floor applied to the reference wind speed
	// before any logarithmic profile computation (m s-1).
	minWindSpeed = 0.1
)

// TempCoeffs holds the temperature-response coefficients of one
// photosynthetic parameter. The Arrhenius activation term applies to
// every parameter; the entropy-based deactivation term applies only to
// the capacity parameters (Vcmax, Jmax, TPU), signalled by a non-zero
// DeltaHd.
type TempCoeffs struct {
	DeltaHa float64 // enthalpy of activation (kJ mol-1)
	DeltaHd float64 // enthalpy of deactivation (kJ mol-1); zero disables deactivation
	DeltaS  float64 // entropy term (kJ mol-1 K-1)
}

// NitrogenParams holds the nitrogen dependence of the photosynthetic
// parameters, derived from Braune et al. (2009) and Evers et al. (2010).
// Slope and Min describe the linear relation
// p25 = Slope * (SLN - Min) between surfacic nitrogen and each
// parameter at 25 °C.
type NitrogenParams struct {
	SlopeVcmax25 float64 // µmol CO2 g-1 N s-1
	SlopeJmax25  float64 // µmol e- g-1 N s-1
	SlopeTPU25   float64 // µmol CO2 g-1 N s-1
	SlopeRdark25 float64 // µmol CO2 g-1 N s-1
	SlopeAlpha   float64 // mol e- m2 mol-1 photon g-1 N

	MinVcmax25 float64 // g N m-2 below which Vcmax25 is non-positive
	MinJmax25  float64
	MinTPU25   float64
	MinRdark25 float64

	// Beta is the intercept of the relation between alpha and surfacic
	// nitrogen (mol e- mol-1 photon).
	Beta float64

	// Delta1 and Delta2 parameterize the dependence of the stomatal
	// scaling factor m on surfacic nitrogen: m = Delta1 * SLN^Delta2
	// (m2 g-1 and dimensionless).
	Delta1 float64
	Delta2 float64

	// NA0 is the surfacic nitrogen used when an element carries no
	// nitrogen input at all (g m-2).
	NA0 float64

	// ProteinsDriverSlope converts surfacic photosynthetic proteins into
	// the capacity driver for the SurfacicProteins model versions
	// (dimensionless).
	ProteinsDriverSlope float64

	// RetroinhibitionK down-regulates the capacity driver by surfacic
	// water-soluble carbohydrates when the retro-inhibition variant is
	// active: driver *= max(0, 1 - RetroinhibitionK*WSC) (m2 g-1).
	RetroinhibitionK float64
}

// Params is the constant parameter table of the model. It is read-only
// during a batch of solves; ApplyOverrides may mutate it between
// batches only.
type Params struct {
	// ModelVersion selects the nitrogen formulation used to build the
	// photosynthetic capacity driver.
	ModelVersion ModelVersion

	// Photosynthetic parameters.
	O       float64 // intercellular O2 concentration (µmol mol-1), Bernacchi et al. (2001)
	KC25    float64 // affinity constant of RuBisCO for C (µmol mol-1), Bernacchi et al. (2001)
	KO25    float64 // affinity constant of RuBisCO for O (µmol mol-1), Bernacchi et al. (2001)
	Gamma25 float64 // CO2 compensation point (µmol mol-1), Braune et al. (2009)
	Theta   float64 // curvature parameter of J (dimensionless)

	N NitrogenParams

	// Stomatal conductance parameters.
	GSMin float64 // minimum gsw, measured in the dark (mol m-2 s-1), Braune et al. (2009)
	GB    float64 // boundary layer conductance to water vapour (mol m-2 s-1), Muller et al. (2005)

	// Physical parameters.
	A                  float64 // attenuation coefficient of wind within a wheat canopy, Campbell and Norman (1998)
	PsychrometricGamma float64 // psychrometric constant (kPa K-1)
	K                  float64 // von Kármán constant (dimensionless)
	Lambda             float64 // latent heat of vaporisation of water (J kg-1)
	RhoCP              float64 // volumetric heat capacity of air (J m-3 K-1)
	ZR                 float64 // height at which the reference wind speed is measured (m)
	R                  float64 // gas constant (J mol-1 K-1)
	Patm               float64 // atmospheric pressure (Pa)
	PARaToRGa          float64 // conversion from absorbed PAR to absorbed global radiation

	// Temperature responses, Braune et al. (2009) except Kc, Ko and
	// Rdark (Bernacchi et al., 2001).
	Vcmax TempCoeffs
	Jmax  TempCoeffs
	TPU   TempCoeffs
	Kc    TempCoeffs
	Ko    TempCoeffs
	Gamma TempCoeffs
	Rdark TempCoeffs
	Tref  float64 // reference temperature (K)

	// EfficiencyStem discounts the gross assimilation of non-blade
	// organs.
	EfficiencyStem float64

	// DeltaConvergence is the relative tolerance on Ci and Ts for the
	// fixed-point iteration.
	DeltaConvergence float64

	// MaxIterations is the hard cap on the number of fixed-point
	// iterations, converged or not.
	MaxIterations int
}

// DefaultParams returns the parameter table calibrated on barley by
// Braune et al. (2009), with nitrogen dependencies from Evers et al.
// (2010).
func DefaultParams() *Params {
	return &Params{
		ModelVersion: Barillot2016,

		O:       21000,
		KC25:    404,
		KO25:    278.4e3,
		Gamma25: 39,
		Theta:   0.72,

		N: NitrogenParams{
			SlopeVcmax25: 84.965,
			SlopeJmax25:  117.6,
			SlopeTPU25:   9.25,
			SlopeRdark25: 0.493,
			SlopeAlpha:   0.0413,

			Beta:   0.2101 + 0.0083,
			Delta1: 14.7,
			Delta2: -0.548,

			NA0: 2,

			ProteinsDriverSlope: 1,
			RetroinhibitionK:    0,
		},

		GSMin: 0.05,
		GB:    3.5,

		A:                  2.5,
		PsychrometricGamma: 66e-3,
		K:                  0.40,
		Lambda:             2260e3,
		RhoCP:              1256,
		ZR:                 2,
		R:                  8.3144,
		Patm:               1.01325e5,
		PARaToRGa:          1.53,

		Vcmax: TempCoeffs{DeltaHa: 89.7, DeltaHd: 149.3, DeltaS: 0.486},
		Jmax:  TempCoeffs{DeltaHa: 48.9, DeltaHd: 152.3, DeltaS: 0.495},
		TPU:   TempCoeffs{DeltaHa: 47., DeltaHd: 152.3, DeltaS: 0.495},
		Kc:    TempCoeffs{DeltaHa: 79.43},
		Ko:    TempCoeffs{DeltaHa: 36.38},
		Gamma: TempCoeffs{DeltaHa: 35.},
		Rdark: TempCoeffs{DeltaHa: 46.39},
		Tref:  298.15,

		EfficiencyStem:   0.78,
		DeltaConvergence: 0.01,
		MaxIterations:    30,
	}
}

// Validate checks the parameter table for configuration errors. It is
// meant to run once per configuration load, not once per organ.
func (p *Params) Validate() error {
	switch p.ModelVersion {
	case Barillot2016, SurfacicProteins, SurfacicProteinsRetroinhibition:
	default:
		return fmt.Errorf("farquharwheat: invalid model version %d: must be one of %s, %s or %s",
			int(p.ModelVersion), Barillot2016, SurfacicProteins, SurfacicProteinsRetroinhibition)
	}
	if p.MaxIterations <= 0 {
		return fmt.Errorf("farquharwheat: MaxIterations must be positive, got %d", p.MaxIterations)
	}
	if p.DeltaConvergence <= 0 {
		return fmt.Errorf("farquharwheat: DeltaConvergence must be positive, got %g", p.DeltaConvergence)
	}
	return nil
}

// overridable returns the parameters that can be changed by name through
// ApplyOverrides.
func (p *Params) overridable() map[string]*float64 {
	return map[string]*float64{
		"O":       &p.O,
		"KC25":    &p.KC25,
		"KO25":    &p.KO25,
		"Gamma25": &p.Gamma25,
		"Theta":   &p.Theta,

		"SlopeVcmax25": &p.N.SlopeVcmax25,
		"SlopeJmax25":  &p.N.SlopeJmax25,
		"SlopeTPU25":   &p.N.SlopeTPU25,
		"SlopeRdark25": &p.N.SlopeRdark25,
		"SlopeAlpha":   &p.N.SlopeAlpha,
		"MinVcmax25":   &p.N.MinVcmax25,
		"MinJmax25":    &p.N.MinJmax25,
		"MinTPU25":     &p.N.MinTPU25,
		"MinRdark25":   &p.N.MinRdark25,
		"Beta":         &p.N.Beta,
		"Delta1":       &p.N.Delta1,
		"Delta2":       &p.N.Delta2,
		"NA0":          &p.N.NA0,

		"ProteinsDriverSlope": &p.N.ProteinsDriverSlope,
		"RetroinhibitionK":    &p.N.RetroinhibitionK,

		"GSMin": &p.GSMin,
		"GB":    &p.GB,

		"A":                  &p.A,
		"PsychrometricGamma": &p.PsychrometricGamma,
		"K":                  &p.K,
		"Lambda":             &p.Lambda,
		"RhoCP":              &p.RhoCP,
		"ZR":                 &p.ZR,
		"R":                  &p.R,
		"Patm":               &p.Patm,
		"PARaToRGa":          &p.PARaToRGa,

		"EfficiencyStem":   &p.EfficiencyStem,
		"DeltaConvergence": &p.DeltaConvergence,
	}
}

// ApplyOverrides sets named parameters to new values. It is the
// configuration-update hook used between simulation batches; it must
// never run concurrently with active solves. An unknown parameter name
// is a configuration error.
func (p *Params) ApplyOverrides(overrides map[string]float64) error {
	fields := p.overridable()
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		field, ok := fields[name]
		if !ok {
			return fmt.Errorf("farquharwheat: unknown parameter %q in overrides", name)
		}
		*field = overrides[name]
	}
	return nil
}
