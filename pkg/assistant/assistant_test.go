package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"lexai-be/pkg/llm"
)

// fakeProvider returns a canned reply and records the last prompt.
type fakeProvider struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

type fakeReader struct {
	text     string
	err      error
	lastMime string
}

func (f *fakeReader) ReadDocument(ctx context.Context, mimeType string, data []byte) (string, error) {
	f.lastMime = mimeType
	return f.text, f.err
}

func TestAnswerer(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		providerErr error
		wantAnswer  string
		wantErr     bool
	}{
		{
			name:       "plain json",
			reply:      `{"answer": "The notice period is 12 months."}`,
			wantAnswer: "The notice period is 12 months.",
		},
		{
			name:       "fenced json",
			reply:      "```json\n{\"answer\": \"Net 30 days.\"}\n```",
			wantAnswer: "Net 30 days.",
		},
		{
			name:       "json padded with prose",
			reply:      "Sure, here you go: {\"answer\": \"Clause 4.2 covers termination.\"} Hope that helps!",
			wantAnswer: "Clause 4.2 covers termination.",
		},
		{
			name:        "provider failure",
			providerErr: errors.New("upstream timeout"),
			wantErr:     true,
		},
		{
			name:    "no json in output",
			reply:   "I cannot answer that.",
			wantErr: true,
		},
		{
			name:    "empty answer field",
			reply:   `{"answer": ""}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{reply: tt.reply, err: tt.providerErr}
			a := NewAnswerer(provider)

			out, err := a.Answer(context.Background(), AnswerInput{
				DocumentText: "This agreement lasts 12 months.",
				Question:     "How long is the term?",
			})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Answer != tt.wantAnswer {
				t.Errorf("Answer = %q, want %q", out.Answer, tt.wantAnswer)
			}
		})
	}
}

func TestAnswererPromptContainsInputs(t *testing.T) {
	provider := &fakeProvider{reply: `{"answer": "ok"}`}
	a := NewAnswerer(provider)

	_, err := a.Answer(context.Background(), AnswerInput{
		DocumentText: "UNIQUE-DOC-TOKEN",
		Question:     "UNIQUE-QUESTION-TOKEN",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(provider.lastPrompt, "UNIQUE-DOC-TOKEN") {
		t.Error("prompt does not contain the document text")
	}
	if !strings.Contains(provider.lastPrompt, "UNIQUE-QUESTION-TOKEN") {
		t.Error("prompt does not contain the question")
	}
}

func TestSuggester(t *testing.T) {
	provider := &fakeProvider{
		reply: `{"suggested_questions": ["What is the term?", "Who signs?", "When does it renew?", "What about fees?"]}`,
	}
	s := NewSuggester(provider)

	out, err := s.Suggest(context.Background(), SuggestInput{
		DocumentContent:  "Some contract",
		PreviousQuestion: "What is this about?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The adapter keeps everything the model returned; callers truncate.
	if len(out.SuggestedQuestions) != 4 {
		t.Errorf("got %d questions, want 4", len(out.SuggestedQuestions))
	}
	if out.SuggestedQuestions[0] != "What is the term?" {
		t.Errorf("first question = %q", out.SuggestedQuestions[0])
	}
}

func TestSuggesterEmptyList(t *testing.T) {
	provider := &fakeProvider{reply: `{"suggested_questions": []}`}
	s := NewSuggester(provider)

	out, err := s.Suggest(context.Background(), SuggestInput{DocumentContent: "x", PreviousQuestion: "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.SuggestedQuestions) != 0 {
		t.Errorf("got %d questions, want 0", len(out.SuggestedQuestions))
	}
}

func TestExtractor(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("%PDF fake"))

	t.Run("success", func(t *testing.T) {
		reader := &fakeReader{text: "Extracted contract text."}
		e := NewExtractor(reader)

		out, err := e.Extract(context.Background(), ExtractInput{
			FileDataURI: "data:application/pdf;base64," + encoded,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.ExtractedText != "Extracted contract text." {
			t.Errorf("ExtractedText = %q", out.ExtractedText)
		}
		if reader.lastMime != "application/pdf" {
			t.Errorf("mime passed to reader = %q", reader.lastMime)
		}
	})

	t.Run("nil reader", func(t *testing.T) {
		e := NewExtractor(nil)
		_, err := e.Extract(context.Background(), ExtractInput{
			FileDataURI: "data:application/pdf;base64," + encoded,
		})
		if err == nil {
			t.Fatal("expected error for provider without extraction support")
		}
	})

	t.Run("invalid payload", func(t *testing.T) {
		e := NewExtractor(&fakeReader{})
		_, err := e.Extract(context.Background(), ExtractInput{FileDataURI: "nonsense"})
		if err == nil {
			t.Fatal("expected error for invalid data URI")
		}
	})

	t.Run("reader failure", func(t *testing.T) {
		e := NewExtractor(&fakeReader{err: errors.New("unreadable scan")})
		_, err := e.Extract(context.Background(), ExtractInput{
			FileDataURI: "data:image/png;base64," + encoded,
		})
		if err == nil {
			t.Fatal("expected error when the backend cannot read the file")
		}
	})
}
