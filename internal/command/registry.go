package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
)

// Registry maps command tokens to handlers. It is built once at startup and
// must be treated as read-only afterwards; dispatch performs no mutation.
type Registry struct {
	order    []string
	byToken  map[string]HandlerFunc
	fallback HandlerFunc
}

// NewRegistry constructs an empty registry. The fallback handler runs for
// every token without an exact match; when nil, unmatched messages are
// dropped silently.
func NewRegistry(fallback HandlerFunc) *Registry {
	return &Registry{
		byToken:  map[string]HandlerFunc{},
		fallback: fallback,
	}
}

// Register binds a token to a handler. Tokens are case-sensitive and must be
// unique; registration order is preserved for listings.
func (r *Registry) Register(token string, h HandlerFunc) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("command token is required")
	}
	if h == nil {
		return fmt.Errorf("handler for %s is required", token)
	}
	if _, exists := r.byToken[token]; exists {
		return fmt.Errorf("command %s is already registered", token)
	}

	r.order = append(r.order, token)
	r.byToken[token] = h
	return nil
}

// SetFallback replaces the fallback handler. Intended for wiring during
// startup only.
func (r *Registry) SetFallback(h HandlerFunc) {
	r.fallback = h
}

// Resolve returns the handler for an exact token match, or the fallback.
func (r *Registry) Resolve(token string) HandlerFunc {
	if h, ok := r.byToken[token]; ok {
		return h
	}
	return r.fallback
}

// Tokens returns the registered command tokens in registration order.
func (r *Registry) Tokens() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Dispatch resolves the message's command token and invokes the matching
// handler. The token is the substring before the first whitespace run;
// anything after it is ignored. Messages without a text body are a no-op
// (photo-only edits and the like never reach a handler).
func (r *Registry) Dispatch(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
	if msg == nil || msg.Text == "" {
		return nil, nil
	}

	h := r.Resolve(firstToken(msg.Text))
	if h == nil {
		return nil, nil
	}

	return h(ctx, client, msg)
}

func firstToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
