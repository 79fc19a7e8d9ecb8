package results

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/neurobin-systems/neurobin/internal/eval/metrics"
	"github.com/neurobin-systems/neurobin/internal/waste"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Timestamp   string  `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier    string  `yaml:"identifier"`
	Expected      string  `yaml:"expected"`
	Predicted     string  `yaml:"predicted"`
	PredictedType string  `yaml:"predictedtype,omitempty"`
	Confidence    float64 `yaml:"confidence"`
	Correct       bool    `yaml:"correct"`
	Reasoning     string  `yaml:"reasoning,omitempty"`
	Error         string  `yaml:"error,omitempty"`
	DurationMS    int64   `yaml:"durationms"`
}

// CategorySummary holds per-category accuracy in the summary section
type CategorySummary struct {
	Category string  `yaml:"category"`
	Total    int     `yaml:"total"`
	Correct  int     `yaml:"correct"`
	Accuracy float64 `yaml:"accuracy"`
}

// EvalSummary is the aggregate section of the eval YAML
type EvalSummary struct {
	TotalRecords    int               `yaml:"totalrecords"`
	SuccessCount    int               `yaml:"successcount"`
	FailureCount    int               `yaml:"failurecount"`
	OverallAccuracy float64           `yaml:"overallaccuracy"`
	Categories      []CategorySummary `yaml:"categories"`
}

// EvalSpec represents the complete evaluation output
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML writes evaluation results to a YAML file in the evals/ directory
// and returns the written path.
func SaveToYAML(datasetPath string, temperature float64, agg *metrics.AggregateResults) (string, error) {
	if err := os.MkdirAll("evals", 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")

	spec := EvalSpec{
		Config: EvalConfig{
			Provider:    agg.Provider,
			Model:       agg.Model,
			Temperature: temperature,
			DatasetPath: datasetPath,
			SampleSize:  agg.SampleSize,
			Timestamp:   timestamp,
		},
		Summary: EvalSummary{
			TotalRecords:    agg.TotalRecords,
			SuccessCount:    agg.SuccessCount,
			FailureCount:    agg.FailureCount,
			OverallAccuracy: agg.OverallAccuracy,
		},
		Results: make([]EvalResult, 0, len(agg.Results)),
	}

	for _, cat := range waste.Categories() {
		stats, ok := agg.PerCategory[cat]
		if !ok {
			continue
		}
		spec.Summary.Categories = append(spec.Summary.Categories, CategorySummary{
			Category: string(cat),
			Total:    stats.Total,
			Correct:  stats.Correct,
			Accuracy: stats.Accuracy,
		})
	}

	for _, r := range agg.Results {
		spec.Results = append(spec.Results, EvalResult{
			Identifier:    r.ID,
			Expected:      string(r.Expected),
			Predicted:     string(r.Predicted),
			PredictedType: r.PredictedType,
			Confidence:    r.Confidence,
			Correct:       r.Correct(),
			Reasoning:     r.Reasoning,
			Error:         r.Error,
			DurationMS:    r.ProcessingTime.Milliseconds(),
		})
	}

	sort.Slice(spec.Results, func(i, j int) bool {
		return spec.Results[i].Identifier < spec.Results[j].Identifier
	})

	filename := fmt.Sprintf("evals/%s-%s.yaml", agg.Model, timestamp)

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		absPath = filename
	}
	return absPath, nil
}

// LoadFromYAML reads a previously saved evaluation file.
func LoadFromYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return &spec, nil
}
