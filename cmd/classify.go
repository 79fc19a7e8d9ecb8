package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/neurobin-systems/neurobin/internal/classify"
	"github.com/neurobin-systems/neurobin/internal/imaging"
	"github.com/neurobin-systems/neurobin/internal/models"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var providerName string
	var model string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <image-file>",
		Short: "Classify a single waste image from the command line",
		Args:  cobra.ExactArgs(1),
		Example: `  # Classify with the default Gemini model
  neurobin classify ./bottle.jpg

  # Classify with a local Ollama model, JSON output
  neurobin classify ./bottle.jpg --provider ollama --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			imageData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image file: %w", err)
			}

			normalized, err := imaging.NewNormalizer().Normalize(imageData, "")
			if err != nil {
				return err
			}

			provider, err := classify.NewProvider(providerName)
			if err != nil {
				return err
			}
			service := classify.NewService(provider, providerName, model)

			result, err := service.Classify(cmd.Context(), normalized)
			if err != nil {
				return err
			}

			if asJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}

			view := models.NewResultView(result)
			fmt.Printf("Waste Type:      %s\n", view.WasteType)
			fmt.Printf("Category:        #%d %s\n", view.CategoryNumber, view.CategoryLabel)
			fmt.Printf("Confidence:      %s\n", view.Confidence)
			fmt.Printf("Disposal Method: %s\n", view.DisposalMethod)
			fmt.Printf("Reasoning:       %s\n", view.Reasoning)
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "gemini", "LLM provider (gemini, openai, or ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw classification as JSON")

	return cmd
}
