package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// Engine recognizes the text on one rendered page.
type Engine interface {
	Recognize(ctx context.Context, page image.Image) (string, error)
	// Close releases resources held by the engine
	Close() error
}

// transcribePrompt is shared by the LLM engines. They are used as plain OCR: field
// extraction happens downstream on whatever text they return.
const transcribePrompt = `You are an OCR engine. Transcribe every piece of text visible in this page of a credit card statement.

Rules:
- Reproduce the text exactly as printed, including numbers, currency symbols, dates and punctuation.
- Keep the reading order and put each printed line on its own line.
- Keep table rows on a single line, separating columns with two spaces.
- Do not summarize, translate, correct or explain anything.
- Do not add headings, commentary or markdown code blocks.
- If the page has no text, return an empty response.`

func encodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to encode")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// cleanText normalizes engine output: line endings, code fences and trailing blanks.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")
	text = strings.TrimSpace(text)

	// LLMs like to wrap the transcription in a fence despite being told not to
	if strings.HasPrefix(text, "```") {
		if nl := strings.Index(text, "\n"); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = ""
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
