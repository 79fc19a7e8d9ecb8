package metrics

import (
	"time"

	"github.com/neurobin-systems/neurobin/internal/waste"
)

// EvaluationResult holds the outcome for a single labeled image.
type EvaluationResult struct {
	ID             string
	Expected       waste.Category
	PredictedType  string // verbatim waste_type from the model
	Predicted      waste.Category
	Confidence     float64
	Reasoning      string
	ProcessingTime time.Duration
	Error          string // if classification failed
}

// Correct reports whether the normalized prediction matches the label.
func (r *EvaluationResult) Correct() bool {
	return r.Error == "" && r.Predicted == r.Expected
}

// CategoryStats collects per-category accuracy.
type CategoryStats struct {
	Total    int
	Correct  int
	Accuracy float64
}

// AggregateResults holds the full evaluation summary.
type AggregateResults struct {
	TotalRecords int
	SuccessCount int
	FailureCount int

	OverallAccuracy float64

	// Keyed by the ground-truth category
	PerCategory map[waste.Category]*CategoryStats

	// Confusion[expected][predicted] counts successful classifications only
	Confusion map[waste.Category]map[waste.Category]int

	MeanConfidenceCorrect   float64
	MeanConfidenceIncorrect float64

	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	Results []EvaluationResult

	EvaluationDate time.Time
	Provider       string
	Model          string
	SampleSize     int
}

// Aggregate folds per-image results into overall and per-category accuracy.
func Aggregate(results []EvaluationResult, provider, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		Provider:       provider,
		Model:          model,
		SampleSize:     len(results),
		PerCategory:    make(map[waste.Category]*CategoryStats),
		Confusion:      make(map[waste.Category]map[waste.Category]int),
	}

	for _, cat := range waste.Categories() {
		agg.PerCategory[cat] = &CategoryStats{}
	}

	correctCount := 0
	confidenceCorrect := 0.0
	confidenceIncorrect := 0.0
	incorrectCount := 0

	for _, r := range results {
		agg.TotalProcessingTime += r.ProcessingTime

		if r.Error != "" {
			agg.FailureCount++
			continue
		}
		agg.SuccessCount++

		stats, ok := agg.PerCategory[r.Expected]
		if !ok {
			stats = &CategoryStats{}
			agg.PerCategory[r.Expected] = stats
		}
		stats.Total++

		if agg.Confusion[r.Expected] == nil {
			agg.Confusion[r.Expected] = make(map[waste.Category]int)
		}
		agg.Confusion[r.Expected][r.Predicted]++

		if r.Correct() {
			correctCount++
			stats.Correct++
			confidenceCorrect += r.Confidence
		} else {
			incorrectCount++
			confidenceIncorrect += r.Confidence
		}
	}

	for _, stats := range agg.PerCategory {
		if stats.Total > 0 {
			stats.Accuracy = float64(stats.Correct) / float64(stats.Total)
		}
	}

	if agg.SuccessCount > 0 {
		agg.OverallAccuracy = float64(correctCount) / float64(agg.SuccessCount)
	}
	if correctCount > 0 {
		agg.MeanConfidenceCorrect = confidenceCorrect / float64(correctCount)
	}
	if incorrectCount > 0 {
		agg.MeanConfidenceIncorrect = confidenceIncorrect / float64(incorrectCount)
	}
	if len(results) > 0 {
		agg.AverageProcessingTime = agg.TotalProcessingTime / time.Duration(len(results))
	}

	return agg
}
