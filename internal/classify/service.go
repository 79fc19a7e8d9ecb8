package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neurobin-systems/neurobin/internal/imaging"
	"github.com/neurobin-systems/neurobin/internal/waste"
)

// Low temperature for consistent, factual classification output.
const DefaultTemperature = 0.1

// Service orchestrates one classification call: it builds the fixed
// instruction, dispatches to the configured provider, parses the structured
// reply, and validates it against the closed category set.
type Service struct {
	provider    Provider
	model       string
	temperature float64
}

// NewService constructs a classification service for the given provider.
// An empty model selects the provider's default.
func NewService(provider Provider, providerName, model string) *Service {
	if model == "" {
		model = DefaultModel(providerName)
	}
	return &Service{
		provider:    provider,
		model:       model,
		temperature: DefaultTemperature,
	}
}

// Classify issues exactly one outbound request for the given normalized
// image and returns the validated classification. A response whose waste
// type falls outside the six categories, or whose disposal method violates
// the guidance pairing, is rejected as a ClassificationError.
func (s *Service) Classify(ctx context.Context, img *imaging.Normalized) (*waste.Classification, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, &ClassificationError{Message: "Please provide an image first."}
	}

	raw, err := s.provider.ClassifyImage(ctx, Request{
		Model:       s.model,
		Temperature: s.temperature,
		Prompt:      BuildPrompt(),
		ImageData:   img.Data,
		ImageMIME:   img.MIMEType,
	})
	if err != nil {
		return nil, err
	}

	result, err := ParseResponse(raw)
	if err != nil {
		slog.Warn("Classification response rejected", "model", s.model, "err", err)
		return nil, err
	}

	slog.Info("Classified waste image", "model", s.model, "waste_type", result.WasteType, "confidence", result.Confidence)
	return result, nil
}

// BuildPrompt returns the fixed instruction text: the six mutually exclusive
// categories and the guidance table, in canonical order.
func BuildPrompt() string {
	var guidance strings.Builder
	guidance.WriteString("Based on the classification, determine the single most 'Optimal Disposal Method'. Use the following guidelines strictly:\n")
	for _, cat := range waste.Categories() {
		fmt.Fprintf(&guidance, "%d. %s: Use '%s'.\n", cat.Number(), cat, waste.DisposalMethod(cat))
	}

	labels := make([]string, 0, 6)
	for _, cat := range waste.Categories() {
		labels = append(labels, fmt.Sprintf("'%s'", cat))
	}

	return fmt.Sprintf(`Analyze the image and classify the waste into one of the following six categories: %s, or %s.
%s
Respond ONLY with a valid JSON object containing 'waste_type', 'confidence', 'reasoning', and 'disposal_method' (which must be a string from the guidance above).`,
		strings.Join(labels[:5], ", "), labels[5], guidance.String())
}

// ParseResponse performs the second-stage parse of the model text into the
// four-field classification object and validates it. Markdown code fences
// around the JSON are tolerated.
func ParseResponse(raw string) (*waste.Classification, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, errInvalidResponse
	}

	var result waste.Classification
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, &ClassificationError{Message: "Invalid response structure or empty result from the API.", Err: err}
	}

	if err := result.Validate(); err != nil {
		return nil, &ClassificationError{Message: fmt.Sprintf("The API returned an invalid classification: %v.", err), Err: err}
	}

	return &result, nil
}
