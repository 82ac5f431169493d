package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/arithlab/presburger/ast"
)

const defaultConfigFile = ".presburger.yaml"

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "presburger [formula]",
	Short:            "presburger - decide formulas of linear arithmetic with quantifiers",
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		// Format: presburger "formula" => behaves like the decide subcommand
		decideCmd.Run(decideCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Set a timeout for deciding")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(benchCmd)
}

// Config is the yaml configuration file layout.
type Config struct {
	Name    string       `yaml:"name"`
	Domain  string       `yaml:"domain"`
	Workers int          `yaml:"workers"`
	Budget  BudgetConfig `yaml:"budget"`
}

// BudgetConfig bounds the eliminator. Zero values mean unlimited.
type BudgetConfig struct {
	MaxRels  int64 `yaml:"max-rels"`
	MaxSteps int64 `yaml:"max-steps"`
}

func loadConfig(path string) (Config, error) {
	config := Config{Name: "presburger", Domain: "integer"}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		// no configuration file. This is fine, run on defaults.
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	return config, nil
}

func parseDomain(name string) (ast.Domain, error) {
	switch name {
	case "rational", "rat", "Q":
		return ast.Rational, nil
	case "integer", "int", "Z":
		return ast.Integer, nil
	default:
		return 0, fmt.Errorf("unknown domain %q (want rational or integer)", name)
	}
}
