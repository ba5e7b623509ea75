package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// TextClient sends a prompt to a generative model and returns its raw text.
type TextClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator turns a conversation transcript into a SOAP note.
type Generator interface {
	GenerateNote(ctx context.Context, transcript string) (string, error)
}

// SOAPGenerator wraps a TextClient with the SOAP note prompt. The model output
// is returned unchanged.
type SOAPGenerator struct {
	client TextClient
}

func NewSOAPGenerator(client TextClient) *SOAPGenerator {
	return &SOAPGenerator{client: client}
}

func (g *SOAPGenerator) GenerateNote(ctx context.Context, transcript string) (string, error) {
	return g.client.Complete(ctx, SOAPPrompt(transcript))
}

// DemoGenerator returns a fixed note after a simulated latency.
type DemoGenerator struct {
	delay time.Duration
	note  string
}

func NewDemoGenerator(note string, delay time.Duration) *DemoGenerator {
	return &DemoGenerator{note: note, delay: delay}
}

func (g *DemoGenerator) GenerateNote(ctx context.Context, _ string) (string, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return g.note, nil
}

// Options selects and configures a generator.
type Options struct {
	Demo      bool
	DemoNote  string
	DemoDelay time.Duration

	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the generator described by opts.
func New(ctx context.Context, opts Options) (Generator, error) {
	if opts.Demo {
		return NewDemoGenerator(opts.DemoNote, opts.DemoDelay), nil
	}

	switch strings.ToLower(opts.Provider) {
	case "", "gemini":
		return NewSOAPGenerator(NewGeminiClient(opts.APIKey, opts.Model, opts.BaseURL, opts.Timeout)), nil
	case "openai":
		client, err := NewChatClient(ctx, opts.APIKey, opts.Model, opts.BaseURL, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return NewSOAPGenerator(client), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
