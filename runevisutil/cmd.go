/*
Copyright © 2024 the RuNeVis authors.
This file is part of RuNeVis.

RuNeVis is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RuNeVis is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RuNeVis.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package runevisutil contains the RuNeVis command-line interface.
package runevisutil

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/greensh16/RuNeVis"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to RuNeVis.
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
			name: "file",
			usage: `
              file is the path to the NetCDF file. It can be a local path
              or a blob storage location such as 'gs://bucket/file.nc'.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "mean",
			usage: `
              mean computes the mean of a variable over a dimension,
              formatted as <var>:<dim>.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "sum",
			usage: `
              sum computes the sum of a variable over a dimension,
              formatted as <var>:<dim>.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "min",
			usage: `
              min computes the minimum of a variable over a dimension,
              formatted as <var>:<dim>.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "max",
			usage: `
              max computes the maximum of a variable over a dimension,
              formatted as <var>:<dim>.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "output-netcdf",
			usage: `
              output-netcdf is the path where a reduction result is saved
              as NetCDF. If it is not set, the result is printed.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "threads",
			usage: `
              threads specifies the number of worker threads used for
              reductions. The default is -1, which uses all available
              processors.`,
			shorthand:  "t",
			defaultVal: runevis.AutoThreads,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose enables debug logging.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "list-vars",
			usage: `
              list-vars lists all dimensions and variables in the file.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "describe",
			usage: `
              describe prints the data type, shape and attributes
              of a variable.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "summary",
			usage: `
              summary computes the minimum, maximum, mean and standard
              deviation of a variable.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "slice",
			usage: `
              slice extracts part of a variable, formatted as
              <var>:<start>:<end>[,<dim>:<start>:<end>]... The first range
              applies to the first dimension of the variable.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "cache_size",
			usage: `
              cache_size is the maximum number of variables held in memory
              while running a batch plan.`,
			defaultVal: 16,
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("RUNEVIS")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	Cfg.AutomaticEnv()

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
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
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
	Root.AddCommand(batchCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("runevis: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// setLogger configures the standard logger.
func setLogger(verbose bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// newExecutor creates the worker pool used by a command.
func newExecutor() (*runevis.Executor, error) {
	threads, err := cast.ToIntE(Cfg.Get("threads"))
	if err != nil {
		return nil, fmt.Errorf("runevis: invalid number of threads: %v", err)
	}
	e, err := runevis.NewExecutor(threads)
	if err != nil {
		return nil, err
	}
	logrus.WithField("threads", e.Threads()).Debug("configured worker pool")
	return e, nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "runevis [file]",
	Short: "Inspect NetCDF files and reduce variables along dimensions.",
	Long: `RuNeVis inspects NetCDF files and computes the mean, sum, minimum or maximum
of a variable along one of its dimensions using all available processors.
Without an operation flag, the file's metadata is printed.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'RUNEVIS_var' where 'var' is the
name of the variable to be set.`,
	Args:              cobra.MaximumNArgs(1),
	DisableAutoGenTag: true,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		setLogger(Cfg.GetBool("verbose"))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		file := Cfg.GetString("file")
		if file == "" && len(args) == 1 {
			file = args[0]
		}
		if file == "" {
			return fmt.Errorf("runevis: no input file specified")
		}
		o, err := optionsFromConfig(Cfg, file)
		if err != nil {
			return err
		}
		e, err := newExecutor()
		if err != nil {
			return err
		}
		defer e.Close()
		return o.Run(cmd.Context(), cmd.OutOrStdout(), e)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of RuNeVis.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("%s v%s\n", runevis.Name, runevis.Version)
	},
	DisableAutoGenTag: true,
}

var batchCmd = &cobra.Command{
	Use:   "batch plan",
	Short: "Run a plan of reductions.",
	Long: `batch runs the reductions listed in a TOML (.toml) or YAML (.yaml, .yml)
plan file. Each variable is read from its file once and shared among the
reductions that use it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := LoadPlan(args[0])
		if err != nil {
			return err
		}
		cacheSize, err := cast.ToIntE(Cfg.Get("cache_size"))
		if err != nil {
			return fmt.Errorf("runevis: invalid cache size: %v", err)
		}
		e, err := newExecutor()
		if err != nil {
			return err
		}
		defer e.Close()
		return plan.Run(cmd.Context(), cmd.OutOrStdout(), e, cacheSize)
	},
	DisableAutoGenTag: true,
}
