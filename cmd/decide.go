package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arithlab/presburger"
	"github.com/arithlab/presburger/ast"
)

var (
	domainName string
	jsonOutput bool
	outPath    string
)

var decideCmd = &cobra.Command{
	Use:   "decide [formulas...]",
	Short: "Decide formulas over the rationals or the integers",
	Long: `Eliminates every quantifier from each formula and reports the verdict.
A closed formula decides to true or false; a formula with free variables is
reduced to a quantifier-free equivalent.
Example) presburger decide --domain integer "(forall x . exists y . x <= y)"`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide formulas to decide")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		config, err := loadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		if domainName == "" {
			domainName = config.Domain
		}
		domain, err := parseDomain(domainName)
		if err != nil {
			logger.Fatal("Invalid domain", zap.Error(err))
		}

		opts := []presburger.Option{
			presburger.WithBudget(config.Budget.MaxRels, config.Budget.MaxSteps),
			presburger.WithWorkers(config.Workers),
		}
		if verbose {
			opts = append(opts, presburger.WithLogger(logger))
		}

		failed := false
		for _, input := range args {
			if !runDecide(ctx, input, domain, opts) {
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	decideCmd.Flags().StringVarP(&domainName, "domain", "d", "", "Domain to decide over: rational or integer")
	decideCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output verdicts in JSON format")
	decideCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
}

// verdict is the JSON layout of a single decision.
type verdict struct {
	Input   string `json:"input"`
	Domain  string `json:"domain"`
	Decided bool   `json:"decided"`
	Value   bool   `json:"value,omitempty"`
	Residue string `json:"residue,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runDecide(ctx context.Context, input string, domain ast.Domain, opts []presburger.Option) bool {
	result, err := presburger.DecideString(ctx, input, domain, opts...)

	v := verdict{Input: input, Domain: domain.String()}
	switch {
	case err != nil:
		v.Error = err.Error()
	case result.Decided:
		v.Decided = true
		v.Value = result.Value
	default:
		v.Residue = result.Formula.String()
	}

	if jsonOutput {
		return printJSONVerdict(v)
	}
	return printVerdict(v, err)
}

func printVerdict(v verdict, err error) bool {
	switch {
	case err != nil:
		var budgetErr *presburger.BudgetError
		var incErr *presburger.IncompleteError
		if errors.As(err, &budgetErr) || errors.As(err, &incErr) {
			color.Yellow("? %s\n  gave up: %v", v.Input, err)
		} else {
			color.Red("! %s\n  error: %v", v.Input, err)
		}
		return false
	case v.Decided && v.Value:
		color.Green("✓ %s\n  true over the %ss", v.Input, v.Domain)
	case v.Decided:
		color.Red("✗ %s\n  false over the %ss", v.Input, v.Domain)
	default:
		color.Cyan("~ %s\n  reduces to %s", v.Input, v.Residue)
	}
	return true
}

func printJSONVerdict(v verdict) bool {
	d, err := json.Marshal(v)
	if err != nil {
		logger.Error("Error marshalling verdict to JSON", zap.Error(err))
		return false
	}
	if outPath == "" {
		fmt.Println(string(d))
	} else {
		f, err := os.OpenFile(outPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("Error creating JSON output file", zap.Error(err))
			return false
		}
		defer f.Close()
		if _, err := fmt.Fprintln(f, string(d)); err != nil {
			logger.Error("Error writing JSON output file", zap.Error(err))
			return false
		}
	}
	return v.Error == ""
}
