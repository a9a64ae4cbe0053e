/*
Copyright © 2026 the InMAP authors.
This file is part of Spray.

Spray is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Spray is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Spray.  If not, see <http://www.gnu.org/licenses/>.
*/

package sprayutil

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/spray"
	"github.com/spatialmodel/spray/science/jet/conejet"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// LiquidSpecies is the definition of one liquid species in a jet file.
type LiquidSpecies struct {
	Name string

	// DensityCoefs are the coefficients of the density [kg/m³] as a
	// polynomial in temperature, lowest order first.
	DensityCoefs []float64
}

// JetFile is the contents of a jet definition file.
type JetFile struct {
	MassFloor float64
	Liquid    []LiquidSpecies
	Jet       []conejet.Config
}

// ReadJetFile reads jet and liquid definitions from the TOML file at
// path, which may contain environment variables.
func ReadJetFile(path string) (*JetFile, error) {
	path = os.ExpandEnv(path)
	var f JetFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("spray: reading jet file %s: %v", path, err)
	}
	return &f, nil
}

// RunConfig holds everything needed to run a simulation.
type RunConfig struct {
	RunID string

	Geom     spray.Geometry
	Boxes    spray.Extents
	Tiles    spray.Extents
	NumProcs int
	Seed     uint64

	Liquid        *spray.PolyLiquid
	Jets          []conejet.Config
	InitialBM2    float64
	MaxRejections int

	Dt       float64
	NumSteps int

	// Lattice, if not nil, is created before injection starts.
	Lattice *spray.LatticeConfig

	MetricsFile string

	Log logrus.FieldLogger
}

// NewRunConfig reads a RunConfig from cfg. If inject is true the jet
// and time stepping configuration is read; otherwise the run only
// creates the lattice. All configuration problems are reported together.
func NewRunConfig(cfg *viper.Viper, inject bool) (*RunConfig, error) {
	var errs *multierror.Error
	rc := &RunConfig{
		RunID:         uuid.New().String(),
		NumProcs:      cfg.GetInt("NumProcs"),
		Seed:          uint64(cfg.GetInt("Seed")),
		MaxRejections: cfg.GetInt("MaxRejections"),
		Dt:            cfg.GetFloat64("Dt"),
		MetricsFile:   os.ExpandEnv(cfg.GetString("MetricsFile")),
	}
	if strings.EqualFold(cfg.GetString("BreakupModel"), "KHRT") {
		rc.InitialBM2 = -1
	}

	l, err := newLogger(cfg.GetString("LogLevel"))
	if err != nil {
		errs = multierror.Append(errs, err)
	} else {
		rc.Log = l.WithField("run", rc.RunID)
	}

	if rc.NumProcs < 1 {
		errs = multierror.Append(errs, fmt.Errorf("spray: NumProcs=%d but should be >0", rc.NumProcs))
	}

	lo, loErr := vec(cfg, "Domain.Lo")
	hi, hiErr := vec(cfg, "Domain.Hi")
	errs = multierror.Append(errs, loErr, hiErr)
	rc.Geom = spray.Geometry{Lo: lo, Hi: hi}
	if loErr == nil && hiErr == nil {
		for i := 0; i < 3; i++ {
			if !(hi[i] > lo[i]) {
				errs = multierror.Append(errs, fmt.Errorf("spray: Domain.Hi[%d]=%g must be greater than Domain.Lo[%d]=%g", i, hi[i], i, lo[i]))
			}
		}
	}
	rc.Boxes, err = extents(cfg, "Grid.Boxes")
	errs = multierror.Append(errs, err)
	rc.Tiles, err = extents(cfg, "Grid.Tiles")
	errs = multierror.Append(errs, err)

	if !inject || cfg.GetBool("Lattice.Enable") {
		lc, err := latticeConfig(cfg, rc.InitialBM2)
		errs = multierror.Append(errs, err)
		rc.Lattice = lc
	}

	if inject {
		rc.NumSteps = cfg.GetInt("NumSteps")
		if !(rc.Dt > 0) {
			errs = multierror.Append(errs, fmt.Errorf("spray: Dt=%g but should be >0", rc.Dt))
		}
		if rc.NumSteps < 0 {
			errs = multierror.Append(errs, fmt.Errorf("spray: NumSteps=%d but should be ≥0", rc.NumSteps))
		}
		errs = multierror.Append(errs, rc.readJets(cfg))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return rc, nil
}

// readJets fills in the jets and liquid from the jet file and the
// Liquid options.
func (rc *RunConfig) readJets(cfg *viper.Viper) error {
	rc.Liquid = &spray.PolyLiquid{Floor: cfg.GetFloat64("Liquid.MassFloor")}
	path := cfg.GetString("JetFile")
	if path == "" {
		return fmt.Errorf("spray: JetFile is not specified")
	}
	f, err := ReadJetFile(path)
	if err != nil {
		return err
	}
	if f.MassFloor > 0 {
		rc.Liquid.Floor = f.MassFloor
	}
	for _, s := range f.Liquid {
		rc.Liquid.Coefs = append(rc.Liquid.Coefs, s.DensityCoefs)
	}
	if len(rc.Liquid.Coefs) == 0 {
		rho, err := toFloat64SliceE(cfg.Get("Liquid.Density"))
		if err != nil {
			return fmt.Errorf("spray: Liquid.Density: %v", err)
		}
		rc.Liquid.Coefs = [][]float64{rho}
	}
	rc.Jets = f.Jet

	var errs *multierror.Error
	if len(rc.Jets) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("spray: jet file %s defines no jets", path))
	}
	names := make(map[string]bool)
	for i, j := range rc.Jets {
		if j.Name == "" {
			j.Name = fmt.Sprintf("jet%d", i)
			rc.Jets[i].Name = j.Name
		}
		if names[j.Name] {
			errs = multierror.Append(errs, fmt.Errorf("spray: duplicate jet name %q", j.Name))
		}
		names[j.Name] = true
		if j.Owner < 0 || j.Owner >= rc.NumProcs {
			errs = multierror.Append(errs, fmt.Errorf("spray: jet %s: owner %d is not in [0, %d)", j.Name, j.Owner, rc.NumProcs))
		}
		if len(j.Y) != len(rc.Liquid.Coefs) && !(len(j.Y) <= 1 && len(rc.Liquid.Coefs) == 1) {
			errs = multierror.Append(errs, fmt.Errorf("spray: jet %s: %d mass fractions for %d liquid species", j.Name, len(j.Y), len(rc.Liquid.Coefs)))
		}
		if len(j.Y) == 0 {
			rc.Jets[i].Y = []float64{1}
		}
	}
	return errs.ErrorOrNil()
}

func latticeConfig(cfg *viper.Viper, bm2 float64) (*spray.LatticeConfig, error) {
	var errs *multierror.Error
	e, err := extents(cfg, "Lattice.Extents")
	errs = multierror.Append(errs, err)
	v, err := vec(cfg, "Lattice.Velocity")
	errs = multierror.Append(errs, err)
	lc := &spray.LatticeConfig{
		Extents:    e,
		Vel:        v,
		Dia:        cfg.GetFloat64("Lattice.Diameter"),
		T:          cfg.GetFloat64("Lattice.Temperature"),
		Y:          []float64{1},
		NumPPP:     cfg.GetFloat64("Lattice.NumPPP"),
		InitialBM2: bm2,
		Rounds:     cfg.GetInt("Lattice.Rounds"),
	}
	if !(lc.Dia > 0) {
		errs = multierror.Append(errs, fmt.Errorf("spray: Lattice.Diameter=%g but should be >0", lc.Dia))
	}
	if !(lc.NumPPP > 0) {
		errs = multierror.Append(errs, fmt.Errorf("spray: Lattice.NumPPP=%g but should be >0", lc.NumPPP))
	}
	if lc.Rounds < 0 {
		errs = multierror.Append(errs, fmt.Errorf("spray: Lattice.Rounds=%d but should be ≥0", lc.Rounds))
	}
	return lc, errs.ErrorOrNil()
}

// vec reads a three-component vector from cfg.
func vec(cfg *viper.Viper, name string) (spray.Vec, error) {
	var v spray.Vec
	f, err := toFloat64SliceE(cfg.Get(name))
	if err != nil {
		return v, fmt.Errorf("spray: %s: %v", name, err)
	}
	if len(f) != 3 {
		return v, fmt.Errorf("spray: %s must have 3 components; got %v", name, f)
	}
	copy(v[:], f)
	return v, nil
}

// extents reads three positive counts from cfg.
func extents(cfg *viper.Viper, name string) (spray.Extents, error) {
	var e spray.Extents
	n, err := toIntSliceE(cfg.Get(name))
	if err != nil {
		return e, fmt.Errorf("spray: %s: %v", name, err)
	}
	if len(n) != 3 {
		return e, fmt.Errorf("spray: %s must have 3 components; got %v", name, n)
	}
	for i, v := range n {
		if v < 1 {
			return e, fmt.Errorf("spray: %s[%d]=%d but should be >0", name, i, v)
		}
		e[i] = v
	}
	return e, nil
}

// toIntSliceE converts a configuration value to a []int, accounting for
// the fact that it may be a JSON array if it was set from an environment
// variable.
func toIntSliceE(i interface{}) ([]int, error) {
	s, ok := i.(string)
	if !ok {
		return cast.ToIntSliceE(i)
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		s = "[" + s + "]"
	}
	var o []int
	if err := json.Unmarshal([]byte(s), &o); err != nil {
		return nil, err
	}
	return o, nil
}

// toFloat64SliceE converts a configuration value to a []float64,
// accounting for the fact that it may be a string if it was set from a
// command line argument or environment variable.
func toFloat64SliceE(i interface{}) ([]float64, error) {
	switch v := i.(type) {
	case []float64:
		return v, nil
	case string:
		v = strings.Trim(strings.TrimSpace(v), "[]")
		if v == "" {
			return nil, nil
		}
		var o []float64
		for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			f, err := cast.ToFloat64E(s)
			if err != nil {
				return nil, err
			}
			o = append(o, f)
		}
		return o, nil
	default:
		s, err := cast.ToSliceE(i)
		if err != nil {
			return nil, err
		}
		o := make([]float64, len(s))
		for j, val := range s {
			if o[j], err = cast.ToFloat64E(val); err != nil {
				return nil, err
			}
		}
		return o, nil
	}
}
