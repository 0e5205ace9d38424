// Package mock provides recording implementations of [speech.Generator] and
// [speech.Narrator] for use in unit tests. Both are safe for concurrent use.
package mock

import (
	"context"
	"sync"

	"introspeechdev/speech"
)

// GenerateCall records the arguments of a single GenerateSpeech invocation.
type GenerateCall struct {
	SystemPrompt string
	UserPrompt   string
}

// Generator is a mock implementation of [speech.Generator].
type Generator struct {
	mu sync.Mutex

	// NameResult is returned by Name. Defaults to "mock".
	NameResult string

	// Result is copied and returned by GenerateSpeech when Err is nil.
	Result speech.SpeechResult

	// Err is returned by GenerateSpeech.
	Err error

	// Block, when non-nil, makes GenerateSpeech wait for it to close or for
	// the context to end.
	Block chan struct{}

	Calls []GenerateCall
}

func (g *Generator) Name() string {
	if g.NameResult == "" {
		return "mock"
	}
	return g.NameResult
}

func (g *Generator) GenerateSpeech(ctx context.Context, systemPrompt string, userPrompt string) (*speech.SpeechResult, error) {
	g.mu.Lock()
	g.Calls = append(g.Calls, GenerateCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	block, result, err := g.Block, g.Result, g.Err
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CallCount returns the number of GenerateSpeech invocations so far.
func (g *Generator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls)
}

// Narrator is a mock implementation of [speech.Narrator].
type Narrator struct {
	mu sync.Mutex

	Audio []byte
	Err   error
	Texts []string
}

func (n *Narrator) Narrate(_ context.Context, text string) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Texts = append(n.Texts, text)
	if n.Err != nil {
		return nil, n.Err
	}
	return n.Audio, nil
}
