package middleware

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// Redactor masks config values whose key matches one of its patterns,
// at any depth of nested maps.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles case-insensitive key patterns. With no patterns it
// masks the credential keys and anything named like a secret or password.
func NewRedactor(patterns ...string) (*Redactor, error) {
	if len(patterns) == 0 {
		patterns = []string{"^apikey$", "token", "secret", "password"}
	}
	r := &Redactor{}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Redact returns a masked copy of flow. The input is not modified.
func (r *Redactor) Redact(flow *domain.Flow) *domain.Flow {
	out := flow.Clone()
	for i := range out.Nodes {
		r.mask(out.Nodes[i].Config)
	}
	return out
}

func (r *Redactor) mask(m map[string]any) {
	for k, v := range m {
		if r.matches(k) {
			m[k] = Mask
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			r.mask(val)
		case []any:
			for _, item := range val {
				if nested, ok := item.(map[string]any); ok {
					r.mask(nested)
				}
			}
		}
	}
}

func (r *Redactor) matches(key string) bool {
	key = strings.TrimSpace(key)
	for _, re := range r.patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// NewRedactMiddleware masks matching values before they reach the store.
// Masking is one way: loaded flows keep the mask.
func NewRedactMiddleware(r *Redactor) Middleware {
	return func(next ports.FlowStore) ports.FlowStore {
		return &redactStore{next: next, r: r}
	}
}

type redactStore struct {
	next ports.FlowStore
	r    *Redactor
}

func (s *redactStore) Save(ctx context.Context, flow *domain.Flow) error {
	return s.next.Save(ctx, s.r.Redact(flow))
}

func (s *redactStore) Load(ctx context.Context, id string) (*domain.Flow, error) {
	return s.next.Load(ctx, id)
}

func (s *redactStore) Delete(ctx context.Context, id string) error {
	return s.next.Delete(ctx, id)
}

func (s *redactStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}
