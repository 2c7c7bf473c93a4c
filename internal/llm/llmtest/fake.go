// Package llmtest provides scripted llm.Client fakes for pipeline tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrScriptExhausted = errors.New("llmtest: no scripted reply left")

// Reply is one scripted answer. Err wins over Text.
type Reply struct {
	Text string
	Err  error
}

// Call records what the fake was asked.
type Call struct {
	Prompt      string
	Temperature float64
}

// Scripted answers calls in order. Route, when set, takes precedence and picks a reply by prompt.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call

	Route func(prompt string) (Reply, bool)
	// OnCall runs before a reply is chosen; index is zero-based.
	OnCall func(index int, prompt string)
}

func New(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

func Text(s string) Reply  { return Reply{Text: s} }
func Fail(err error) Reply { return Reply{Err: err} }

func (s *Scripted) GenerateContent(ctx context.Context, prompt string, temperature float64) (string, error) {
	s.mu.Lock()
	idx := len(s.calls)
	s.calls = append(s.calls, Call{Prompt: prompt, Temperature: temperature})
	hook := s.OnCall
	s.mu.Unlock()

	if hook != nil {
		hook(idx, prompt)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Route != nil {
		if r, ok := s.Route(prompt); ok {
			return r.Text, r.Err
		}
	}
	if len(s.replies) == 0 {
		return "", ErrScriptExhausted
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.Text, r.Err
}

func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Scripted) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// CountContaining counts prompts that include substr.
func (s *Scripted) CountContaining(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.Contains(c.Prompt, substr) {
			n++
		}
	}
	return n
}
