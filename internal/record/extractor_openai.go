package record

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	dErrors "trialmatch/pkg/domain-errors"
)

const extractionPrompt = `You are a medical data extractor. Extract patient data from the text below.
Return ONLY raw JSON. Do not use Markdown formatting.

CRITICAL RULES FOR BIOMARKERS:
- Values must be NUMBERS (floats) only.
- DO NOT include fractions or strings like "120/80".
- If you see Blood Pressure (e.g. "160/95"), split it into two fields: "SystolicBP" (160) and "DiastolicBP" (95).

Fields required:
- patient_id (string)
- age (integer)
- diagnosis (string)
- biomarkers (object of floats)
- medications (array of strings)
- location (string)

Medical Record:
%s`

// extractedPayload is the JSON shape the model is instructed to return.
type extractedPayload struct {
	PatientID   string             `json:"patient_id"`
	Age         int                `json:"age"`
	Diagnosis   string             `json:"diagnosis"`
	Biomarkers  map[string]float64 `json:"biomarkers"`
	Medications []string           `json:"medications"`
	Location    string             `json:"location"`
}

// OpenAIExtractor extracts structured patient records from free text with a
// chat-completion model. The model output is parsed and then run through the
// same Record validation as every other producer; nothing the model returns
// bypasses the invariants.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAIExtractor(apiKey, model string, logger *slog.Logger) (*OpenAIExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	return &OpenAIExtractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

func (e *OpenAIExtractor) ExtractFromText(ctx context.Context, text string) (Record, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(extractionPrompt, text)},
		},
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "extraction model call failed", "error", err)
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "record extraction failed", err)
	}
	if len(resp.Choices) == 0 {
		return Record{}, dErrors.New(dErrors.CodeInternal, "extraction model returned no choices")
	}

	rec, err := parseExtracted(resp.Choices[0].Message.Content)
	if err != nil {
		e.logger.WarnContext(ctx, "extraction output rejected", "error", err)
		return Record{}, err
	}
	return rec, nil
}

// parseExtracted turns raw model output into a validated Record. Markdown
// fences are stripped first; the model sometimes adds them despite
// instructions.
func parseExtracted(content string) (Record, error) {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.TrimSpace(strings.ReplaceAll(content, "```", ""))

	var payload extractedPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return Record{}, dErrors.Wrap(dErrors.CodeRecordValidation, "extracted record is not valid JSON", err)
	}

	return New(payload.PatientID, payload.Diagnosis, payload.Age, payload.Biomarkers, payload.Medications, payload.Location)
}
