package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwithparamesh/agentflow/pkg/adapters/memory"
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/persistence/middleware"
	"github.com/techwithparamesh/agentflow/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, middleware.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func credentialFlow() *domain.Flow {
	f := domain.NewFlow("wf-secret", "Secrets")
	f.Nodes = append(f.Nodes,
		domain.Node{ID: "send", Type: domain.NodeTypeAction, AppID: "slack", ActionID: "send_message",
			Config: map[string]any{
				"apiKey":      "xoxb-123",
				"accessToken": "{{ $env.SLACK_TOKEN }}",
				"text":        "hello",
				"retries":     3,
			}},
	)
	return f
}

func wrap(t *testing.T, cfg middleware.EncryptionConfig, store ports.FlowStore) ports.FlowStore {
	t.Helper()
	mw, err := middleware.NewSecretsMiddleware(cfg)
	require.NoError(t, err)
	return mw(store)
}

func TestSecretsMiddleware_RoundTrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := wrap(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)

	flow := credentialFlow()
	require.NoError(t, store.Save(ctx, flow))
	assert.Equal(t, "xoxb-123", flow.Nodes[0].Config["apiKey"], "caller's flow is untouched")

	raw, err := underlying.Load(ctx, flow.ID)
	require.NoError(t, err)
	sealed, _ := raw.Nodes[0].Config["apiKey"].(string)
	assert.True(t, strings.HasPrefix(sealed, middleware.SealedPrefix), "apiKey sealed at rest, got %q", sealed)
	assert.NotContains(t, sealed, "xoxb-123")
	assert.Equal(t, "{{ $env.SLACK_TOKEN }}", raw.Nodes[0].Config["accessToken"], "expressions are not secrets")
	assert.Equal(t, "hello", raw.Nodes[0].Config["text"])

	loaded, err := store.Load(ctx, flow.ID)
	require.NoError(t, err)
	assert.True(t, flow.Equal(loaded))
}

func TestSecretsMiddleware_SealsOnce(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := wrap(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)

	require.NoError(t, store.Save(ctx, credentialFlow()))
	first, err := underlying.Load(ctx, "wf-secret")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, first))
	second, err := underlying.Load(ctx, "wf-secret")
	require.NoError(t, err)
	assert.Equal(t, first.Nodes[0].Config["apiKey"], second.Nodes[0].Config["apiKey"])
}

func TestSecretsMiddleware_PlainValuesLoad(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore(credentialFlow())
	store := wrap(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)

	loaded, err := store.Load(ctx, "wf-secret")
	require.NoError(t, err)
	assert.Equal(t, "xoxb-123", loaded.Nodes[0].Config["apiKey"])
}

func TestSecretsMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	oldStore := wrap(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying)
	require.NoError(t, oldStore.Save(ctx, credentialFlow()))

	newStore := wrap(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, underlying)
	loaded, err := newStore.Load(ctx, "wf-secret")
	require.NoError(t, err)
	assert.Equal(t, "xoxb-123", loaded.Nodes[0].Config["apiKey"])

	loaded.Nodes[0].Config["apiKey"] = "xoxb-456"
	require.NoError(t, newStore.Save(ctx, loaded))

	_, err = oldStore.Load(ctx, "wf-secret")
	assert.ErrorIs(t, err, middleware.ErrDecrypt)
}

func TestSecretsMiddleware_CustomKeys(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := wrap(t, middleware.EncryptionConfig{ActiveKey: generateKey(t), Keys: []string{"text"}}, underlying)

	require.NoError(t, store.Save(ctx, credentialFlow()))
	raw, err := underlying.Load(ctx, "wf-secret")
	require.NoError(t, err)
	assert.Equal(t, "xoxb-123", raw.Nodes[0].Config["apiKey"])
	assert.NotEqual(t, "hello", raw.Nodes[0].Config["text"])
}

func TestSecretsMiddleware_Contract(t *testing.T) {
	ports.RunFlowStoreContract(t, wrap(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore()))
}

func TestSecretsMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewSecretsMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewSecretsMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestDecodeKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.DecodeKey(base64.StdEncoding.EncodeToString(key) + "\n")
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.DecodeKey("not base64!")
	assert.Error(t, err)
	_, err = middleware.DecodeKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
