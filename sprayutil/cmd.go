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

// Package sprayutil contains the command-line interface and configuration
// handling for spray simulations.
package sprayutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/spray"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to spray.
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
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print:
              one of trace, debug, info, warn or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "NumProcs",
			usage: `
              NumProcs is the number of processes the domain is
              distributed across.`,
			shorthand:  "n",
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "Seed",
			usage: `
              Seed is the base random number seed. Process i uses
              Seed+i.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags()},
		},
		{
			name: "Domain.Lo",
			usage: `
              Domain.Lo is the lower corner of the rectangular domain [m].`,
			defaultVal: []float64{0, 0, 0},
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "Domain.Hi",
			usage: `
              Domain.Hi is the upper corner of the rectangular domain [m].`,
			defaultVal: []float64{1, 1, 1},
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "Grid.Boxes",
			usage: `
              Grid.Boxes is the number of boxes the domain is divided into
              along each axis. Boxes are distributed across processes in
              contiguous blocks.`,
			defaultVal: []int{2, 2, 2},
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "Grid.Tiles",
			usage: `
              Grid.Tiles is the number of tiles each box is divided into
              along each axis.`,
			defaultVal: []int{1, 1, 1},
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "JetFile",
			usage: `
              JetFile is the path to a TOML file holding [[Jet]] and,
              optionally, [[Liquid]] definitions. It may contain
              environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{injectCmd.Flags()},
		},
		{
			name: "Liquid.Density",
			usage: `
              Liquid.Density holds the polynomial coefficients of the
              density [kg/m³] of a single-species liquid as a function of
              temperature. It is ignored if the JetFile defines liquids.`,
			defaultVal: []float64{1000},
			flagsets:   []*pflag.FlagSet{injectCmd.Flags()},
		},
		{
			name: "Liquid.MassFloor",
			usage: `
              Liquid.MassFloor is the smallest droplet mass [kg] that can
              be represented.`,
			defaultVal: spray.DefaultMassFloor,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags()},
		},
		{
			name: "BreakupModel",
			usage: `
              BreakupModel is the droplet breakup model in use. New
              parcels start with a second breakup scalar of -1 for
              "KHRT" and 0 otherwise.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "MaxRejections",
			usage: `
              MaxRejections is the number of consecutive droplet samples
              that may be rejected before injection fails.`,
			defaultVal: spray.DefaultMaxRejections,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags()},
		},
		{
			name: "Dt",
			usage: `
              Dt is the time step [s].`,
			defaultVal: 1.e-4,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags()},
		},
		{
			name: "NumSteps",
			usage: `
              NumSteps is the number of time steps to run.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags()},
		},
		{
			name: "Lattice.Enable",
			usage: `
              Lattice.Enable specifies whether to fill the domain with a
              uniform lattice of parcels before injection starts.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags()},
		},
		{
			name: "Lattice.Extents",
			usage: `
              Lattice.Extents is the number of lattice parcels along each
              axis.`,
			defaultVal: []int{10, 10, 10},
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "Lattice.Velocity",
			usage: `
              Lattice.Velocity is the velocity [m/s] of lattice parcels.`,
			defaultVal: []float64{0, 0, 0},
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "Lattice.Diameter",
			usage: `
              Lattice.Diameter is the droplet diameter [m] of lattice
              parcels.`,
			defaultVal: 1.e-5,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "Lattice.Temperature",
			usage: `
              Lattice.Temperature is the temperature [K] of lattice
              parcels.`,
			defaultVal: 300.,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "Lattice.NumPPP",
			usage: `
              Lattice.NumPPP is the number of droplets each lattice parcel
              represents.`,
			defaultVal: 1.,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "Lattice.Rounds",
			usage: `
              Lattice.Rounds is the number of rounds in which lattice
              parcels are redistributed. If it is 0, the number is chosen
              from the number of processes.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
		{
			name: "MetricsFile",
			usage: `
              MetricsFile, if set, is where injection and initialization
              metrics are written in the Prometheus text format when the
              run finishes.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{injectCmd.Flags(), initCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SPRAY")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			defineFlag(set, option.name, option.shorthand, option.usage, option.defaultVal)
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

// defineFlag adds a flag named name to set, with its type taken from
// the default value. An empty shorthand means the flag has none.
func defineFlag(set *pflag.FlagSet, name, shorthand, usage string, def interface{}) {
	switch v := def.(type) {
	case string:
		set.StringP(name, shorthand, v, usage)
	case bool:
		set.BoolP(name, shorthand, v, usage)
	case int:
		set.IntP(name, shorthand, v, usage)
	case []int:
		set.IntSliceP(name, shorthand, v, usage)
	case float64:
		set.Float64P(name, shorthand, v, usage)
	case []float64:
		set.Float64SliceP(name, shorthand, v, usage)
	default:
		panic(fmt.Sprintf("spray: option %s has unsupported type %T", name, def))
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(injectCmd)
	Root.AddCommand(initCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("spray: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "spray",
	Short: "A distributed spray parcel injection model.",
	Long: `spray injects computational parcels representing liquid sprays into a
distributed domain and fills domains with uniform parcel lattices.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SPRAY_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_'.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of spray.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("spray v%s\n", spray.Version)
	},
	DisableAutoGenTag: true,
}

// injectCmd is a command that runs an injection simulation.
var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Inject spray parcels.",
	Long: `inject runs NumSteps time steps in which parcels from the jets
defined in JetFile are injected into the domain and redistributed to the
processes that own them. If Lattice.Enable is true, the domain is first
filled with a uniform lattice of parcels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := NewRunConfig(Cfg, true)
		if err != nil {
			return err
		}
		s, err := Run(context.Background(), rc)
		if err != nil {
			return err
		}
		s.Print(cmd.OutOrStdout())
		return nil
	},
	DisableAutoGenTag: true,
}

// initCmd is a command that fills the domain with a uniform lattice.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a uniform parcel lattice.",
	Long: `init fills the domain with a uniform lattice of identical parcels,
redistributing them to the processes that own them in bounded rounds,
and reports how many parcels each process holds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := NewRunConfig(Cfg, false)
		if err != nil {
			return err
		}
		s, err := Run(context.Background(), rc)
		if err != nil {
			return err
		}
		s.Print(cmd.OutOrStdout())
		return nil
	},
	DisableAutoGenTag: true,
}

// newLogger returns a logger writing messages at or above level.
func newLogger(level string) (*logrus.Logger, error) {
	l := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("spray: invalid LogLevel: %v", err)
	}
	l.SetLevel(lvl)
	return l, nil
}
