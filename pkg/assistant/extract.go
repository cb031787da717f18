package assistant

import (
	"context"
	"fmt"

	"lexai-be/pkg/llm"
	"lexai-be/pkg/utils"
)

// ExtractInput is a single encoded file payload in data-URI form:
// "data:<mimetype>;base64,<encoded_data>".
type ExtractInput struct {
	FileDataURI string
}

type ExtractOutput struct {
	ExtractedText string
}

// Extractor delegates file-to-text conversion to a multimodal backend.
// No local parsing happens here.
type Extractor struct {
	reader llm.DocumentReader
}

func NewExtractor(reader llm.DocumentReader) *Extractor {
	return &Extractor{reader: reader}
}

func (e *Extractor) Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error) {
	if e.reader == nil {
		return nil, fmt.Errorf("configured LLM provider does not support file extraction")
	}

	mimeType, data, err := utils.ParseDataURI(input.FileDataURI)
	if err != nil {
		return nil, fmt.Errorf("invalid file payload: %w", err)
	}

	text, err := e.reader.ReadDocument(ctx, mimeType, data)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}

	return &ExtractOutput{ExtractedText: text}, nil
}
