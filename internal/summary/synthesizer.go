package summary

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"frameworks/pkg/llm"
)

const defaultSynthesisTimeout = 60 * time.Second

// Synthesizer turns a digest prompt into prose. The publisher only
// depends on this port, so tests swap in a canned implementation.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string) (string, error)
}

const digestSystemPrompt = `You write concise weekly project digests for an engineering team.
Summarize the crew updates you are given into a short readable digest:
lead with what shipped, then what's in flight, then blockers.
Attribute items to people by name. Do not invent work that is not in the updates.`

// LLMSynthesizer drains a streaming completion into a single digest under
// a bounded timeout.
type LLMSynthesizer struct {
	provider llm.Provider
	timeout  time.Duration
}

func NewLLMSynthesizer(provider llm.Provider, timeout time.Duration) *LLMSynthesizer {
	if timeout <= 0 {
		timeout = defaultSynthesisTimeout
	}
	return &LLMSynthesizer{provider: provider, timeout: timeout}
}

func (s *LLMSynthesizer) Synthesize(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stream, err := s.provider.Complete(ctx, []llm.Message{
		{Role: "system", Content: digestSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var content strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		content.WriteString(chunk.Content)
	}

	digest := strings.TrimSpace(content.String())
	if digest == "" {
		return "", errors.New("synthesis produced empty digest")
	}
	return digest, nil
}
