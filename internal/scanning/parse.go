package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// transcriptionPrompt is the shared prompt used by all LLM providers for transcribing invoices
const transcriptionPrompt = `You are an OCR engine. Transcribe every piece of text in this invoice image exactly as printed.

Rules:
1. Keep the reading order top to bottom, left to right.
2. Put each printed line on its own line.
3. Separate table columns and side-by-side fields with at least two spaces, never a single space.
4. Do not correct, translate, summarize or reformat numbers, dates or amounts. Keep decimal commas, currency symbols and percent signs as printed.
5. Estimate how legible the document was as a confidence between 0 and 100.

Return ONLY valid JSON in this exact format:
{
  "text": "the transcription, lines separated by \n",
  "confidence": 0
}

Important:
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// parseRecognitionJSON parses the JSON response from an LLM transcriber
func parseRecognitionJSON(text string) (*Recognition, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var rec Recognition
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	if strings.TrimSpace(rec.Text) == "" {
		return nil, fmt.Errorf("no text recognized")
	}

	// Models occasionally answer on a 0-1 scale
	if rec.Confidence > 0 && rec.Confidence <= 1 {
		rec.Confidence *= 100
	}
	if rec.Confidence < 0 {
		rec.Confidence = 0
	}
	if rec.Confidence > 100 {
		rec.Confidence = 100
	}

	return &rec, nil
}
