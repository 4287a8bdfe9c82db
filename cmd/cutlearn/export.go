package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/piwi3910/CutLearn/internal/env"
	"github.com/piwi3910/CutLearn/internal/export"
	"github.com/piwi3910/CutLearn/internal/model"
	"github.com/piwi3910/CutLearn/internal/project"
)

var (
	exportResult string
	exportPDF    string
	exportLabels string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a solved packing as a PDF report or piece labels",
	Run: func(cmd *cobra.Command, args []string) {
		if exportPDF == "" && exportLabels == "" {
			logrus.Fatal("Nothing to do: pass --pdf and/or --labels")
		}

		result, err := project.LoadResult(exportResult)
		if err != nil {
			logrus.Fatalf("Cannot load result: %v", err)
		}

		stocks, err := replay(result)
		if err != nil {
			logrus.Fatalf("Result does not replay cleanly: %v", err)
		}

		if exportPDF != "" {
			if err := export.ExportPDF(exportPDF, stocks, result.Placed); err != nil {
				logrus.Fatalf("Cannot write layout PDF: %v", err)
			}
			logrus.Infof("Layout written to %s", exportPDF)
		}
		if exportLabels != "" {
			if err := export.ExportLabels(exportLabels, result.Placed); err != nil {
				logrus.Fatalf("Cannot write labels: %v", err)
			}
			logrus.Infof("Labels written to %s", exportLabels)
		}
	},
}

// replay rebuilds the occupancy grids by applying the recorded placements
// to a fresh environment, validating the result file on the way.
func replay(result project.RunResult) ([]model.Stock, error) {
	environment := env.New(result.Job)
	environment.Reset()
	for _, pieces := range result.Placed {
		for _, pp := range pieces {
			if _, _, err := environment.Step(pp.Placement); err != nil {
				return nil, err
			}
		}
	}
	return environment.Observation().Stocks, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportResult, "result", "result.json", "Result file from cutlearn solve")
	exportCmd.Flags().StringVar(&exportPDF, "pdf", "", "Layout report PDF to write")
	exportCmd.Flags().StringVar(&exportLabels, "labels", "", "QR label sheet PDF to write")

	rootCmd.AddCommand(exportCmd)
}
