package reporting

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// BestParametersFile is the best.json document.
type BestParametersFile struct {
	RunID       string                  `json:"run_id"`
	Symbol      string                  `json:"symbol"`
	Sector      string                  `json:"sector,omitempty"`
	GeneratedAt time.Time               `json:"generated_at"`
	StopReason  string                  `json:"stop_reason"`
	Generations int                     `json:"generations"`
	Parameters  types.TradingParameters `json:"parameters"`
	Train       *types.TradingResult    `json:"train"`
	Test        *types.TradingResult    `json:"test,omitempty"`
}

// BuildBestParametersFile flattens a run summary into the best.json layout.
func BuildBestParametersFile(summary types.RunSummary) BestParametersFile {
	doc := BestParametersFile{
		RunID:       summary.Metadata.RunID,
		Symbol:      summary.Metadata.Symbol,
		Sector:      summary.Metadata.Sector,
		GeneratedAt: summary.Metadata.StartedAt.Add(summary.Duration).UTC(),
		StopReason:  summary.StopReason,
		Generations: summary.Generations,
	}
	if summary.Best != nil {
		train := *summary.Best
		train.TestResult = nil
		doc.Parameters = train.Parameters
		doc.Train = &train
		doc.Test = summary.Best.TestResult
	}
	return doc
}

// FormatBestParameters returns the indented best.json bytes.
func FormatBestParameters(summary types.RunSummary) ([]byte, error) {
	return json.MarshalIndent(BuildBestParametersFile(summary), "", "  ")
}

// WriteBestParametersJSON writes best.json to path
func WriteBestParametersJSON(summary types.RunSummary, path string) error {
	data, err := FormatBestParameters(summary)
	if err != nil {
		return err
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadBestParametersJSON loads a best.json written by WriteBestParametersJSON.
func ReadBestParametersJSON(path string) (*BestParametersFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc BestParametersFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
