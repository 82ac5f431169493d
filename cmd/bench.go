package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arithlab/presburger"
	"github.com/arithlab/presburger/ast"
)

var benchWorkers int

var benchCmd = &cobra.Command{
	Use:   "bench [paths...]",
	Short: "Decide a corpus of formulas and report timings",
	Long: `Reads formula files (one formula per line, # starts a comment), decides
every formula, and prints a summary.
Example) presburger bench --domain integer testdata/corpus.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide formula files or directories")
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

		formulas, err := collectFormulas(args)
		if err != nil {
			logger.Fatal("Failed to read formula corpus", zap.Error(err))
		}
		if len(formulas) == 0 {
			fmt.Println("no formulas found")
			return
		}

		opts := []presburger.Option{
			presburger.WithBudget(config.Budget.MaxRels, config.Budget.MaxSteps),
			presburger.WithWorkers(config.Workers),
		}
		runBench(ctx, formulas, domain, opts)
	},
}

func init() {
	benchCmd.Flags().StringVarP(&domainName, "domain", "d", "", "Domain to decide over: rational or integer")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", runtime.NumCPU(), "Number of formulas decided concurrently")
}

type benchOutcome struct {
	input   string
	err     error
	decided bool
	value   bool
	elapsed time.Duration
}

func runBench(ctx context.Context, formulas []string, domain ast.Domain, opts []presburger.Option) {
	bar := progressbar.NewOptions(len(formulas),
		progressbar.OptionSetDescription("deciding"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	outcomes := make([]benchOutcome, len(formulas))

	// limit the number of workers
	sem := make(chan struct{}, benchWorkers)
	done := make(chan int, len(formulas))
	started := 0
	for i, input := range formulas {
		select {
		case <-ctx.Done():
			fmt.Println("\nbench timed out")
			os.Exit(1)
		case sem <- struct{}{}:
		}
		started++
		go func(i int, input string) {
			defer func() { <-sem }()
			start := time.Now()
			result, err := presburger.DecideString(ctx, input, domain, opts...)
			outcomes[i] = benchOutcome{
				input:   input,
				err:     err,
				decided: result.Decided,
				value:   result.Value,
				elapsed: time.Since(start),
			}
			_ = bar.Add(1)
			done <- i
		}(i, input)
	}
	for j := 0; j < started; j++ {
		<-done
	}
	fmt.Println()

	var trues, falses, residues, failures int
	var total time.Duration
	var slowest benchOutcome
	for _, o := range outcomes {
		total += o.elapsed
		if o.elapsed > slowest.elapsed {
			slowest = o
		}
		switch {
		case o.err != nil:
			failures++
			color.Red("! %s: %v", o.input, o.err)
		case o.decided && o.value:
			trues++
		case o.decided:
			falses++
		default:
			residues++
		}
	}

	fmt.Printf("%d formulas over the %ss in %s (avg %s)\n",
		len(formulas), domain, total, total/time.Duration(len(formulas)))
	fmt.Printf("  %s %d  %s %d  reduced %d  failed %d\n",
		color.GreenString("true"), trues, color.RedString("false"), falses, residues, failures)
	if slowest.input != "" {
		fmt.Printf("  slowest: %s (%s)\n", slowest.input, slowest.elapsed)
	}
	if failures > 0 {
		os.Exit(1)
	}
}

// collectFormulas reads every given path. Directories are walked for .pa
// files.
func collectFormulas(paths []string) ([]string, error) {
	var formulas []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if info.IsDir() {
			err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !fileInfo.IsDir() && filepath.Ext(filePath) == ".pa" {
					fs, err := readFormulaFile(filePath)
					if err != nil {
						return err
					}
					formulas = append(formulas, fs...)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("error walking directory %s: %w", path, err)
			}
			continue
		}
		fs, err := readFormulaFile(path)
		if err != nil {
			return nil, err
		}
		formulas = append(formulas, fs...)
	}
	return formulas, nil
}

func readFormulaFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var formulas []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			formulas = append(formulas, line)
		}
	}
	return formulas, scanner.Err()
}
