package evalcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command for evaluating classification accuracy
// against a labeled dataset.
func NewRunCmd() *cobra.Command {
	var datasetPath string
	var provider string
	var model string
	var sampleSize int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate classification accuracy against a labeled dataset",
		Long: `Run the waste classifier against a dataset of labeled images and measure
per-category accuracy.

The dataset is a JSONL or Parquet file where each record has an id, an
image_path or image_url, and a ground-truth label naming one of the six
waste categories. Results are written to the evals/ directory as YAML.`,
		Example: `  # Evaluate 10 records with Gemini
  neurobin eval run --dataset ./waste-images.jsonl --sample 10

  # Evaluate 100 records with a local Ollama model
  neurobin eval run --dataset ./waste-images.parquet --sample 100 --provider ollama

  # Evaluate the full dataset
  neurobin eval run --dataset ./waste-images.jsonl --sample -1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", datasetPath)
			}
			return executeRun(datasetPath, provider, model, sampleSize, concurrency)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to labeled dataset file (required)")
	cmd.Flags().StringVar(&provider, "provider", "gemini", "LLM provider (gemini, openai, or ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().IntVar(&sampleSize, "sample", 10, "Number of records to evaluate (-1 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 3, "Number of concurrent classification calls")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewReportCmd creates the report command for rendering saved results.
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a saved evaluation results file",
		Example: `  # Text report
  neurobin eval report --results evals/gemini-2.5-flash-preview-05-20-2026-08-29_12-00-00.yaml

  # JSON output for further processing
  neurobin eval report --results evals/latest.yaml --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resultsPath == "" {
				return fmt.Errorf("--results is required")
			}
			return executeReport(resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a saved evaluation YAML file (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}
