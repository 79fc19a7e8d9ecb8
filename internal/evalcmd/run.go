package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/neurobin-systems/neurobin/internal/classify"
	"github.com/neurobin-systems/neurobin/internal/eval/dataset"
	"github.com/neurobin-systems/neurobin/internal/eval/metrics"
	"github.com/neurobin-systems/neurobin/internal/eval/results"
	"github.com/neurobin-systems/neurobin/internal/imaging"
	"github.com/neurobin-systems/neurobin/internal/waste"
)

func executeRun(datasetPath, providerName, model string, sampleSize, concurrency int) error {
	slog.Info("Starting evaluation run", "dataset", datasetPath, "provider", providerName, "model", model)

	records, err := dataset.NewLoader(datasetPath).LoadSample(sampleSize)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "records", len(records))

	provider, err := classify.NewProvider(providerName)
	if err != nil {
		return err
	}
	if model == "" {
		model = classify.DefaultModel(providerName)
	}
	service := classify.NewService(provider, providerName, model)
	normalizer := imaging.NewNormalizer()

	slog.Info("Processing records", "concurrency", concurrency)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	resultsChan := make(chan metrics.EvaluationResult, len(records))

	for i, record := range records {
		wg.Add(1)
		go func(idx int, record dataset.Record) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing record", "id", record.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))
			resultsChan <- evaluateRecord(record, service, normalizer)
		}(i, record)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var evalResults []metrics.EvaluationResult
	for result := range resultsChan {
		evalResults = append(evalResults, result)
	}
	sort.Slice(evalResults, func(i, j int) bool { return evalResults[i].ID < evalResults[j].ID })

	agg := metrics.Aggregate(evalResults, providerName, model)

	savedPath, err := results.SaveToYAML(datasetPath, classify.DefaultTemperature, agg)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	printSummary(agg)
	fmt.Printf("\nResults saved to: %s\n", savedPath)
	fmt.Printf("\nGenerate a detailed report with:\n")
	fmt.Printf("  neurobin eval report --results %s\n", savedPath)

	return nil
}

func evaluateRecord(record dataset.Record, service *classify.Service, normalizer *imaging.Normalizer) metrics.EvaluationResult {
	result := metrics.EvaluationResult{ID: record.ID}

	expected, known := record.Category()
	if !known {
		result.Error = fmt.Sprintf("unrecognized ground-truth label: %q", record.Label)
		return result
	}
	result.Expected = expected

	if !record.HasImage() {
		result.Error = "no image available for classification"
		return result
	}

	imageData, contentType, err := readRecordImage(record)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	normalized, err := normalizer.Normalize(imageData, contentType)
	if err != nil {
		result.Error = fmt.Sprintf("failed to normalize image: %v", err)
		return result
	}

	start := time.Now()
	classification, err := service.Classify(context.Background(), normalized)
	result.ProcessingTime = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	predicted, _ := waste.Normalize(classification.WasteType)
	result.PredictedType = classification.WasteType
	result.Predicted = predicted
	result.Confidence = classification.Confidence
	result.Reasoning = classification.Reasoning
	return result
}

func readRecordImage(record dataset.Record) ([]byte, string, error) {
	if record.ImagePath != "" {
		data, err := os.ReadFile(record.ImagePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read image file: %w", err)
		}
		return data, "", nil
	}

	resp, err := http.Get(record.ImageURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32*1024*1024))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func printSummary(agg *metrics.AggregateResults) {
	fmt.Println("\n========================================")
	fmt.Println("Waste Classification Evaluation Summary")
	fmt.Println("========================================")
	fmt.Printf("Provider:         %s\n", agg.Provider)
	fmt.Printf("Model:            %s\n", agg.Model)
	fmt.Printf("Total Records:    %d\n", agg.TotalRecords)
	fmt.Printf("Successful:       %d\n", agg.SuccessCount)
	fmt.Printf("Failed:           %d\n", agg.FailureCount)
	fmt.Printf("Overall Accuracy: %.1f%%\n", agg.OverallAccuracy*100)
	fmt.Printf("Avg Time/Record:  %s\n", agg.AverageProcessingTime.Round(time.Millisecond))

	fmt.Println("\nPer-Category Accuracy:")
	for _, cat := range waste.Categories() {
		stats, ok := agg.PerCategory[cat]
		if !ok || stats.Total == 0 {
			continue
		}
		fmt.Printf("  %-25s %3d/%3d  %.1f%%\n", cat, stats.Correct, stats.Total, stats.Accuracy*100)
	}

	if agg.MeanConfidenceCorrect > 0 || agg.MeanConfidenceIncorrect > 0 {
		fmt.Printf("\nMean confidence when correct:   %.2f\n", agg.MeanConfidenceCorrect)
		fmt.Printf("Mean confidence when incorrect: %.2f\n", agg.MeanConfidenceIncorrect)
	}
}
