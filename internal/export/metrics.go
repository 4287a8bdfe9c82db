package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CutLearn/internal/model"
)

// ExportMetricsXLSX writes training metrics to an Excel workbook: an
// episode sheet with filled ratio and reward per episode, and a summary
// sheet with the best scores and recent-window means.
func ExportMetricsXLSX(path string, m *model.Metrics) error {
	episodes := m.Episodes()
	if len(episodes) == 0 {
		return fmt.Errorf("no episodes to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const episodeSheet = "Episodes"
	f.SetSheetName(f.GetSheetName(0), episodeSheet)

	headers := []string{"Episode", "Filled Ratio", "Waste", "Reward"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(episodeSheet, cell, h)
	}
	for row, ep := range episodes {
		values := []any{ep.Episode, ep.FilledRatio, 1 - ep.FilledRatio, ep.Reward}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(episodeSheet, cell, v)
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summary := [][]any{
		{"Best Filled Ratio", m.BestFilledRatio},
		{"Best Reward", m.BestReward},
		{"Best Episode", m.BestEpisode},
		{"Recent Mean Filled", m.RecentMeanFilled()},
		{"Recent Mean Reward", m.RecentMeanReward()},
		{"Total Episodes", len(episodes)},
	}
	for row, pair := range summary {
		for col, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+1)
			f.SetCellValue(summarySheet, cell, v)
		}
	}

	return f.SaveAs(path)
}
