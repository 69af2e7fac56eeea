package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicModels maps friendly names to Anthropic model IDs.
var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// AnthropicProvider implements Provider and Streamer using the Anthropic SDK.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}

	client := anthropic.NewClient(opts...)
	model := resolveModel(cfg.Model, anthropicModels)

	return &AnthropicProvider{
		client: &client,
		model:  model,
	}, nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return nil, err
	}

	// Use structured output via JSON output format when schema is provided.
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{
				Schema: req.Schema.Definition,
			},
		}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	content, err := extractAnthropicContent(msg)
	if err != nil {
		return nil, err
	}

	// Validate against schema if provided.
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content:    content,
		Usage:      mapAnthropicUsage(msg.Usage),
		Model:      string(msg.Model),
		StopReason: mapAnthropicStopReason(msg.StopReason),
	}, nil
}

// GenerateStream starts a streamed free-text generation.
func (p *AnthropicProvider) GenerateStream(ctx context.Context, req Request) (*Stream, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	out := newStream(cancel)

	go func() {
		sse := p.client.Messages.NewStreaming(ctx, params)
		acc := anthropic.Message{}
		for sse.Next() {
			event := sse.Current()
			_ = acc.Accumulate(event)

			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok {
					if !out.emit(ctx, delta.Text) {
						out.finish(mapAnthropicUsage(acc.Usage), ctx.Err())
						return
					}
				}
			}
		}
		if err := sse.Err(); err != nil && !errors.Is(err, context.Canceled) {
			out.finish(mapAnthropicUsage(acc.Usage), mapAnthropicError(err))
			return
		}
		out.finish(mapAnthropicUsage(acc.Usage), ctx.Err())
	}()

	return out, nil
}

func (p *AnthropicProvider) ModelID() string {
	return p.model
}

func (p *AnthropicProvider) buildParams(req Request) (anthropic.MessageNewParams, error) {
	msgs, err := buildAnthropicMessages(req)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  msgs,
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	return params, nil
}

// buildAnthropicMessages converts messages, attaching binary payloads to the
// first user message as document/image content blocks.
func buildAnthropicMessages(req Request) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(req.Messages))
	attached := false

	for _, m := range req.Messages {
		role := anthropic.MessageParamRoleUser
		if m.Role == RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}

		content := []anthropic.ContentBlockParamUnion{
			anthropic.NewTextBlock(m.Content),
		}

		if !attached && role == anthropic.MessageParamRoleUser {
			for _, att := range req.Attachments {
				block, err := anthropicAttachmentBlock(att)
				if err != nil {
					return nil, err
				}
				content = append(content, block)
			}
			attached = true
		}

		out = append(out, anthropic.MessageParam{
			Role:    role,
			Content: content,
		})
	}

	return out, nil
}

func anthropicAttachmentBlock(att Attachment) (anthropic.ContentBlockParamUnion, error) {
	encoded := base64.StdEncoding.EncodeToString(att.Data)

	switch {
	case att.MIME == "application/pdf":
		return anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
			Data: encoded,
		}), nil
	case strings.HasPrefix(att.MIME, "image/"):
		return anthropic.NewImageBlockBase64(att.MIME, encoded), nil
	default:
		return anthropic.ContentBlockParamUnion{}, &ErrUnsupportedAttachment{
			MIME:     att.MIME,
			Provider: "anthropic",
		}
	}
}

func extractAnthropicContent(msg *anthropic.Message) (json.RawMessage, error) {
	for _, block := range msg.Content {
		if block.Type == "text" {
			return json.RawMessage(block.Text), nil
		}
	}
	return nil, &ErrInvalidResponse{
		Err: fmt.Errorf("no text content in Anthropic response"),
	}
}

func mapAnthropicUsage(u anthropic.Usage) Usage {
	return Usage{
		InputTokens:  int(u.InputTokens),
		OutputTokens: int(u.OutputTokens),
		TotalTokens:  int(u.InputTokens + u.OutputTokens),
	}
}

func mapAnthropicStopReason(reason anthropic.StopReason) string {
	switch reason {
	case "end_turn":
		return "end"
	case "max_tokens":
		return "max_tokens"
	default:
		return "end"
	}
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.StatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	// If not in the map, use as-is (allows direct model IDs).
	return name
}
