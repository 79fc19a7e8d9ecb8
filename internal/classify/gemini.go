package classify

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini.
type Gemini struct{}

// NewGemini returns a new Gemini provider.
func NewGemini() *Gemini {
	return &Gemini{}
}

// ClassifyImage sends the instruction and inline image to Gemini with a
// response schema constraining the reply to the four-field JSON object.
func (g *Gemini) ClassifyImage(ctx context.Context, req Request) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema()

	resp, err := model.GenerateContent(ctx,
		genai.Text(req.Prompt),
		genai.Blob{MIMEType: req.ImageMIME, Data: req.ImageData},
	)
	if err != nil {
		return "", apiCallError(err)
	}

	if len(resp.Candidates) == 0 {
		return "", errInvalidResponse
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errInvalidResponse
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", errInvalidResponse
}

// responseSchema requires a JSON object with exactly the four named fields.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"waste_type": {
				Type:        genai.TypeString,
				Description: "One of 'Biodegradable Waste', 'Recyclable Waste', 'Non-Recyclable Waste', 'Hazardous Waste', 'Biomedical Waste', or 'E-waste'.",
			},
			"confidence": {
				Type:        genai.TypeNumber,
				Description: "A floating-point number between 0 and 1 representing classification certainty.",
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: "A brief, one-sentence explanation for the classification.",
			},
			"disposal_method": {
				Type:        genai.TypeString,
				Description: "The single optimal disposal method based on the provided guidance.",
			},
		},
		Required: []string{"waste_type", "confidence", "reasoning", "disposal_method"},
	}
}

// apiCallError converts a transport or endpoint failure into a
// ClassificationError carrying the endpoint's message, with recognized
// authentication failures rewritten to a stable message.
func apiCallError(err error) error {
	message := err.Error()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	return &ClassificationError{Message: RewriteAPIMessage(message), Err: err}
}
