// Package audio turns recorded voice answers into text for the study
// dialogs.
package audio

import (
	"context"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, r io.Reader, filename string) (string, error)
}

// WhisperTranscriber transcribes audio through the OpenAI audio API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a Whisper-backed transcriber. The API key
// comes from the config or OPENAI_API_KEY.
func NewWhisperTranscriber(apiKey, baseURL string) (*WhisperTranscriber, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set for transcription")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &WhisperTranscriber{
		client: openai.NewClientWithConfig(config),
		model:  openai.Whisper1,
	}, nil
}

// Transcribe sends the audio stream for transcription. filename carries
// the extension the API uses to sniff the container format.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, r io.Reader, filename string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   r,
		FilePath: filename,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return resp.Text, nil
}

// MockTranscriber returns canned transcripts for tests.
type MockTranscriber struct {
	Texts []string
	Err   error

	// Filenames records the filename of each call.
	Filenames []string
}

func (m *MockTranscriber) Transcribe(_ context.Context, _ io.Reader, filename string) (string, error) {
	m.Filenames = append(m.Filenames, filename)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Texts) == 0 {
		return "", fmt.Errorf("mock transcriber: no canned texts left")
	}
	text := m.Texts[0]
	m.Texts = m.Texts[1:]
	return text, nil
}
