package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/ports"
)

// SealedPrefix marks a config value encrypted by the secrets middleware.
const SealedPrefix = "enc:v1:"

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrDecrypt is returned when no configured key opens a sealed value.
var ErrDecrypt = errors.New("failed to decrypt secret")

// DefaultSecretKeys are the node config keys sealed when none are given.
var DefaultSecretKeys = []string{domain.KeyAPIKey, domain.KeyOAuthToken, domain.KeyAccessToken}

// EncryptionConfig holds the keys for sealing credential values at rest.
type EncryptionConfig struct {
	// ActiveKey seals new values. Must be KeySize bytes.
	ActiveKey []byte
	// FallbackKeys are tried in order when ActiveKey cannot open a value,
	// which allows rotating keys without rewriting every flow first.
	FallbackKeys [][]byte
	// Keys names the node config keys to seal. Defaults to DefaultSecretKeys.
	Keys []string
}

// DecodeKey parses a base64 encoded AES-256 key.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

// NewSecretsMiddleware seals credential config values on Save and opens
// them on Load. Values already sealed, non-string values and expressions
// pass through unchanged on Save; plain values pass through on Load.
func NewSecretsMiddleware(cfg EncryptionConfig) (Middleware, error) {
	active, err := newAEAD(cfg.ActiveKey)
	if err != nil {
		return nil, fmt.Errorf("active key: %w", err)
	}
	fallbacks := make([]cipher.AEAD, 0, len(cfg.FallbackKeys))
	for i, k := range cfg.FallbackKeys {
		aead, err := newAEAD(k)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallbacks = append(fallbacks, aead)
	}
	keys := cfg.Keys
	if len(keys) == 0 {
		keys = DefaultSecretKeys
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}

	return func(next ports.FlowStore) ports.FlowStore {
		return &secretsStore{next: next, active: active, fallbacks: fallbacks, keys: set}
	}, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

type secretsStore struct {
	next      ports.FlowStore
	active    cipher.AEAD
	fallbacks []cipher.AEAD
	keys      map[string]bool
}

func (s *secretsStore) Save(ctx context.Context, flow *domain.Flow) error {
	sealed := flow.Clone()
	for i := range sealed.Nodes {
		cfg := sealed.Nodes[i].Config
		for k, v := range cfg {
			str, ok := v.(string)
			if !s.keys[k] || !ok || str == "" || strings.HasPrefix(str, SealedPrefix) || strings.Contains(str, "{{") {
				continue
			}
			enc, err := s.seal(str)
			if err != nil {
				return fmt.Errorf("seal %s.%s: %w", sealed.Nodes[i].ID, k, err)
			}
			cfg[k] = enc
		}
	}
	return s.next.Save(ctx, sealed)
}

func (s *secretsStore) Load(ctx context.Context, id string) (*domain.Flow, error) {
	flow, err := s.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range flow.Nodes {
		cfg := flow.Nodes[i].Config
		for k, v := range cfg {
			str, ok := v.(string)
			if !ok || !strings.HasPrefix(str, SealedPrefix) {
				continue
			}
			plain, err := s.open(str)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s", err, flow.Nodes[i].ID, k)
			}
			cfg[k] = plain
		}
	}
	return flow, nil
}

func (s *secretsStore) Delete(ctx context.Context, id string) error {
	return s.next.Delete(ctx, id)
}

func (s *secretsStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}

func (s *secretsStore) seal(plain string) (string, error) {
	nonce := make([]byte, s.active.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	out := s.active.Seal(nonce, nonce, []byte(plain), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

func (s *secretsStore) open(sealed string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: malformed value", ErrDecrypt)
	}
	if plain, err := openWith(s.active, data); err == nil {
		return plain, nil
	}
	for _, aead := range s.fallbacks {
		if plain, err := openWith(aead, data); err == nil {
			return plain, nil
		}
	}
	return "", ErrDecrypt
}

func openWith(aead cipher.AEAD, data []byte) (string, error) {
	n := aead.NonceSize()
	if len(data) < n {
		return "", ErrDecrypt
	}
	plain, err := aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
