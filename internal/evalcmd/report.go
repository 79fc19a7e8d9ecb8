package evalcmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/neurobin-systems/neurobin/internal/eval/results"
)

func executeReport(resultsPath, format string) error {
	spec, err := results.LoadFromYAML(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(spec)
	case "json":
		return printJSONReport(spec)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(spec *results.EvalSpec) error {
	fmt.Println("========================================")
	fmt.Println("Waste Classification Evaluation Report")
	fmt.Println("========================================")
	fmt.Printf("Provider:  %s\n", spec.Config.Provider)
	fmt.Printf("Model:     %s\n", spec.Config.Model)
	fmt.Printf("Dataset:   %s\n", spec.Config.DatasetPath)
	fmt.Printf("Timestamp: %s\n", spec.Config.Timestamp)
	fmt.Println()

	fmt.Printf("Total Records:    %d\n", spec.Summary.TotalRecords)
	fmt.Printf("Successful:       %d\n", spec.Summary.SuccessCount)
	fmt.Printf("Failed:           %d\n", spec.Summary.FailureCount)
	fmt.Printf("Overall Accuracy: %.1f%%\n", spec.Summary.OverallAccuracy*100)

	fmt.Println("\nPer-Category Accuracy:")
	for _, cat := range spec.Summary.Categories {
		if cat.Total == 0 {
			continue
		}
		fmt.Printf("  %-25s %3d/%3d  %.1f%%\n", cat.Category, cat.Correct, cat.Total, cat.Accuracy*100)
	}

	fmt.Println("\nDetailed Results:")
	fmt.Println("========================================")
	for i, result := range spec.Results {
		fmt.Printf("\n[%d] Record: %s\n", i+1, result.Identifier)

		if result.Error != "" {
			fmt.Printf("  Error: %s\n", result.Error)
			continue
		}

		marker := "MISS"
		if result.Correct {
			marker = "OK"
		}
		fmt.Printf("  [%s] expected %s, predicted %s (confidence %.2f)\n",
			marker, result.Expected, result.Predicted, result.Confidence)
		if !result.Correct && result.Reasoning != "" {
			fmt.Printf("  Reasoning: %s\n", result.Reasoning)
		}
	}

	return nil
}

func printJSONReport(spec *results.EvalSpec) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(spec)
}
