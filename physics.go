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

import "math"

// This file holds the stateless biochemical and physical formulas of the
// model. Each function maps a fixed set of scalar inputs to scalar
// outputs; the coupling between them is the job of Solver. Division
// guards (near-zero Ci, gsw or wind) are the responsibility of the
// caller's iteration setup, not of these functions.

// TemperatureAdjust scales a photosynthetic parameter from its value at
// 25 °C to its value at organ temperature ts (°C). The Arrhenius
// activation term applies to every parameter; the entropy-based
// deactivation term applies only when the coefficients carry a
// deactivation enthalpy (the capacity parameters Vcmax, Jmax and TPU),
// never to the kinetic constants or the CO2 compensation point.
func (p *Params) TemperatureAdjust(c TempCoeffs, p25, ts float64) float64 {
	tk := ts + kelvinDegree

	// Energy of activation, normalized to unity at Tref.
	fActivation := math.Exp((c.DeltaHa * (tk - p.Tref)) / (p.R * 1e-3 * p.Tref * tk))

	fDeactivation := 1.
	if c.DeltaHd != 0 {
		// Energy of deactivation, normalized to unity at Tref.
		fDeactivation = (1 + math.Exp((p.Tref*c.DeltaS-c.DeltaHd)/(p.Tref*p.R*1e-3))) /
			(1 + math.Exp((tk*c.DeltaS-c.DeltaHd)/(tk*p.R*1e-3)))
	}

	return p25 * fActivation * fDeactivation
}

// Photosynthesis computes the assimilation rates of an organ following
// Farquhar et al. (1980), with nitrogen and temperature regulation of
// the parameters after Braune et al. (2009) and Evers et al. (2010).
//
// par is the absorbed PAR (µmol m-2 s-1), sln the photosynthetic
// capacity driver (g N m-2), ts the organ temperature (°C) and ci the
// internal CO2 (µmol mol-1). It returns the gross assimilation Ag, the
// net assimilation An and the respiration in light Rd (µmol m-2 s-1).
func (p *Params) Photosynthesis(par, sln, ts, ci float64) (ag, an, rd float64) {
	// RuBisCO parameter dependence on temperature.
	kc := p.TemperatureAdjust(p.Kc, p.KC25, ts)
	ko := p.TemperatureAdjust(p.Ko, p.KO25, ts)
	gamma := p.TemperatureAdjust(p.Gamma, p.Gamma25, ts)

	// RuBisCO-limited carboxylation rate.
	vcmax25 := p.N.SlopeVcmax25 * (sln - p.N.MinVcmax25)
	vcmax := p.TemperatureAdjust(p.Vcmax, vcmax25, ts)
	ac := (vcmax * (ci - gamma)) / (ci + kc*(1+p.O/ko))

	// RuBP regeneration-limited carboxylation rate via electron
	// transport. J is the non-rectangular hyperbola of Muller et al.
	// (2005) and Evers et al. (2010) with curvature Theta.
	alpha := p.N.SlopeAlpha*sln + p.N.Beta
	jmax25 := p.N.SlopeJmax25 * (sln - p.N.MinJmax25)
	jmax := p.TemperatureAdjust(p.Jmax, jmax25, ts)
	j := ((jmax + alpha*par) - math.Sqrt((jmax+alpha*par)*(jmax+alpha*par)-4*p.Theta*alpha*par*jmax)) / (2 * p.Theta)
	aj := (j * (ci - gamma)) / (4*ci + 8*gamma)

	// Triose phosphate utilisation-limited carboxylation rate. The Vo
	// term follows Braune et al. (2009) with the oxygenation rate kept
	// inside the (1 - Gamma/Ci) factor.
	tpu25 := p.N.SlopeTPU25 * (sln - p.N.MinTPU25)
	tpu := p.TemperatureAdjust(p.TPU, tpu25, ts)
	vomax := (vcmax * ko * gamma) / (0.5 * kc * p.O)
	vo := (vomax * p.O) / (p.O + ko*(1+ci/kc))
	ap := (1 - gamma/ci) * (3*tpu + vo)

	ag = amin(ac, aj, ap)

	// Mitochondrial respiration in light: the dark respiration decays
	// to 33% of its dark value as PAR increases, with a half-decay
	// constant of 15 µmol m-2 s-1 (Muller et al. (2005), eq. 19).
	rdark25 := p.N.SlopeRdark25 * (sln - p.N.MinRdark25)
	rdark := p.TemperatureAdjust(p.Rdark, rdark25, ts)
	rd = rdark * (0.33 + (1-0.33)*math.Pow(0.5, par/15))

	// No net assimilation below the compensation point or below the
	// minimum nitrogen thresholds (Farquhar, 1980; von Caemmerer, 2000).
	if ag <= 0 {
		ag, an = 0, 0
	} else {
		an = ag - rd
	}
	return ag, an, rd
}

// StomatalConductance computes the stomatal conductance to water vapour
// (mol m-2 s-1) with the Ball, Woodrow and Berry (1987) model, using Ag
// rather than An after Braune et al. (2009) and Muller et al. (2005).
// The GSMin term is always present, so the result never falls below the
// dark conductance floor.
func (p *Params) StomatalConductance(ag, an, sln, ambientCO2, rh float64) float64 {
	// CO2 concentration at the organ surface, from Prieto et al. (2012).
	cs := ambientCO2 - an*(1.37/p.GB)
	// Scaling factor dependence on surfacic nitrogen.
	m := p.N.Delta1 * math.Pow(sln, p.N.Delta2)
	return p.GSMin + m*((ag*rh)/cs)
}

// InternalCO2 computes the intercellular CO2 concentration
// (µmol mol-1) from the diffusion balance through the stomatal and
// boundary-layer resistances. 1.6 converts gsw to a CO2 conductance and
// 1.37 = 1.6^(2/3) does the same for the boundary layer.
func (p *Params) InternalCO2(ambientCO2, an, gsw float64) float64 {
	return ambientCO2 - an*((1.6/gsw)+(1.37/p.GB))
}

// EnergyBalance estimates the temperature (°C) and the transpiration
// rate (mm s-1) of an organ from its energy balance.
//
// w is the organ characteristic dimension (m), z the organ height (m),
// zh the canopy height (m), ur the wind speed at the reference height
// (m s-1), par the absorbed PAR (µmol m-2 s-1), gsw the stomatal
// conductance (mol m-2 s-1), ta the air temperature and ts the organ
// temperature of the current iteration (°C, ts = ta at the first
// iteration), rh the relative humidity (decimal fraction).
//
// Net absorbed radiation accounts for shortwave only; longwave exchange
// with the sky and neighboring organs is deliberately omitted.
func (p *Params) EnergyBalance(organ OrganType, w, z, zh, ur, par, gsw, ta, ts, rh float64) (tsNew, tr float64) {
	d := 0.7 * zh  // zero plane displacement height (m)
	zo := 0.1 * zh // roughness length (m)

	ur = math.Max(ur, minWindSpeed)

	// Wind profile: log law above d + zo, exponential attenuation
	// within the canopy (Campbell and Norman, 1998).
	uStar := (ur * p.K) / math.Log((p.ZR-d)/zo) // friction velocity (m s-1)
	uh := (uStar / p.K) * math.Log((zh-d)/zo)   // wind speed at canopy top (m s-1)
	u := uh * math.Exp(p.A*(z/zh-1))            // wind speed at organ height (m s-1)

	// Boundary layer resistance to heat (s m-1), Finnigan and Raupach
	// (1987), Monteith (1973).
	var rbh float64
	if organ.Cylindric() {
		rbh = w / (1.2e-5 * math.Pow((u*w)/1.5e-5, 0.47)) // vertical cylinder, forced convection
	} else {
		rbh = 154 * math.Sqrt(w/u) // horizontal plane, forced convection
	}

	// Aerodynamic resistance to heat integrated from zr to zo + d (s m-1).
	ra := 1 / (p.K * p.K * ur) * math.Pow(math.Log((p.ZR-d)/zo), 2)

	// Net absorbed radiation (J m-2 s-1). 1 W m-2 of PAR is equivalent
	// to 4.55 µmol m-2 s-1 (Goudriaan and van Laar, 1994).
	rga := (par * p.PARaToRGa) / 4.55
	esTa := 0.611 * math.Exp((17.4*ta)/(239+ta)) // saturated vapour pressure of the air (kPa)
	v := rh * esTa                               // vapour pressure of the air (kPa)
	rn := rga

	// Slope of the saturation vapour pressure curve (kPa K-1): analytic
	// derivative when the organ is at air temperature (the first
	// iteration), finite difference otherwise.
	var s float64
	if ts == ta {
		taK := ta + kelvinDegree
		s = ((17.4 * 239) / ((taK + 239) * (taK + 239))) * esTa
	} else {
		esTs := 0.611 * math.Exp((17.4*ts)/(239+ts))
		tsK, taK := ts+kelvinDegree, ta+kelvinDegree
		s = (esTs - esTa) / (tsK - taK)
	}

	// Penman-Monteith transpiration (mm s-1).
	vpda := esTa - v
	rbw := 0.96 * rbh                                        // boundary layer resistance for water (s m-1)
	gswPhysic := (gsw * p.R * (ts + kelvinDegree)) / p.Patm  // stomatal conductance in m s-1, Tuzet (2003)
	rswp := 1 / gswPhysic                                    // stomatal resistance for water (s m-1)
	tr = math.Max(0, (s*rn+(p.RhoCP*vpda)/(rbh+ra))/
		(p.Lambda*(s+p.PsychrometricGamma*((rbw+ra+rswp)/(rbh+ra)))))

	// Organ temperature from the energy residual.
	tsNew = ta + ((rbh+ra)*(rn-p.Lambda*tr))/p.RhoCP

	return tsNew, tr
}

func amin(vals ...float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
