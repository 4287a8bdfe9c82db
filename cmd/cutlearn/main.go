// Command cutlearn trains and runs a learned 2D cutting-stock placement
// policy.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/piwi3910/CutLearn/internal/env"
	"github.com/piwi3910/CutLearn/internal/importer"
	"github.com/piwi3910/CutLearn/internal/project"
)

var (
	logLevel string // Log verbosity level

	// Job definition flags, used when the job file carries no stock sheet.
	jobPath     string
	stockWidth  int
	stockHeight int
	stockCount  int
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "cutlearn",
	Short: "Learned 2D cutting-stock placement policy",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// loadJob builds a Job from the job file, falling back to the stock flags
// when the file declares no stock sheets.
func loadJob() (env.Job, error) {
	if jobPath == "" {
		return env.Job{}, fmt.Errorf("no job file given (use --job)")
	}

	job := env.Job{Name: strings.TrimSuffix(filepath.Base(jobPath), filepath.Ext(jobPath))}

	switch strings.ToLower(filepath.Ext(jobPath)) {
	case ".json":
		if err := project.LoadJSON(jobPath, &job); err != nil {
			return env.Job{}, err
		}
	case ".xlsx", ".xls":
		result := importer.ImportExcel(jobPath)
		if err := applyImport(&job, result); err != nil {
			return env.Job{}, err
		}
	case ".csv":
		result := importer.ImportCSV(jobPath)
		if err := applyImport(&job, result); err != nil {
			return env.Job{}, err
		}
	case ".dxf":
		result := importer.ImportDXF(jobPath)
		if err := applyImport(&job, result); err != nil {
			return env.Job{}, err
		}
	default:
		return env.Job{}, fmt.Errorf("unsupported job format %q", filepath.Ext(jobPath))
	}

	if len(job.Stocks) == 0 {
		job.Stocks = []env.StockSpec{{Width: stockWidth, Height: stockHeight, Quantity: stockCount}}
	}
	if len(job.Products) == 0 {
		return env.Job{}, fmt.Errorf("job %s has no product demands", jobPath)
	}
	return job, nil
}

func applyImport(job *env.Job, result importer.ImportResult) error {
	for _, w := range result.Warnings {
		logrus.Warnf("[import] %s", w)
	}
	for _, e := range result.Errors {
		logrus.Errorf("[import] %s", e)
	}
	if len(result.Products) == 0 {
		return fmt.Errorf("no products imported from %s", jobPath)
	}
	job.Products = result.Products
	job.Stocks = result.Stocks
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&jobPath, "job", "", "Job file (.json, .xlsx, .csv, .dxf)")
	rootCmd.PersistentFlags().IntVar(&stockWidth, "stock-width", 10, "Stock width in cells when the job declares none")
	rootCmd.PersistentFlags().IntVar(&stockHeight, "stock-height", 10, "Stock height in cells when the job declares none")
	rootCmd.PersistentFlags().IntVar(&stockCount, "stock-count", 10, "Stock sheet count when the job declares none")
}
