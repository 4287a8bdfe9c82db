package project

import (
	"github.com/piwi3910/CutLearn/internal/env"
)

// RunResult is a solved packing persisted for later export: the job it
// came from and the applied placements grouped by stock.
type RunResult struct {
	Job    env.Job             `json:"job"`
	Placed [][]env.PlacedPiece `json:"placed"`
}

// SaveResult writes a run result to path as JSON.
func SaveResult(path string, result RunResult) error {
	return SaveJSON(path, result)
}

// LoadResult reads a run result from path.
func LoadResult(path string) (RunResult, error) {
	var result RunResult
	if err := LoadJSON(path, &result); err != nil {
		return RunResult{}, err
	}
	return result, nil
}
