package secrets_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bignyap/go-sqlhelper/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_PlainValue(t *testing.T) {
	r := secrets.NewResolver()

	for _, v := range []string{"", "hunter2", "pass:word", "vault:secret/db"} {
		got, err := r.Resolve(context.Background(), v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestResolve_Env(t *testing.T) {
	t.Setenv("SQLHELPER_TEST_PASSWORD", "s3cret")
	r := secrets.NewResolver()

	got, err := r.Resolve(context.Background(), "env:SQLHELPER_TEST_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	_, err = r.Resolve(context.Background(), "env:SQLHELPER_TEST_UNSET")
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestResolve_RegisteredProvider(t *testing.T) {
	r := secrets.NewResolver()
	boom := errors.New("denied")
	r.Register("kms", secrets.ProviderFunc(func(ctx context.Context, ref string) (string, error) {
		if ref == "bad" {
			return "", boom
		}
		return "decrypted-" + ref, nil
	}))

	got, err := r.Resolve(context.Background(), "kms:abc")
	require.NoError(t, err)
	assert.Equal(t, "decrypted-abc", got)

	_, err = r.Resolve(context.Background(), "kms:bad")
	assert.ErrorIs(t, err, boom)
}

func vaultServer(t *testing.T, payload map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/db" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": payload})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVaultProvider_KVv2(t *testing.T) {
	srv := vaultServer(t, map[string]interface{}{
		"data": map[string]interface{}{"password": "from-vault", "port": 5432},
	})
	p, err := secrets.NewVaultProvider(secrets.VaultConfig{Address: srv.URL, Token: "t"})
	require.NoError(t, err)

	got, err := p.Lookup(context.Background(), "secret/data/db#password")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", got)

	_, err = p.Lookup(context.Background(), "secret/data/db#missing")
	assert.ErrorIs(t, err, secrets.ErrNotFound)

	_, err = p.Lookup(context.Background(), "secret/data/db#port")
	assert.Error(t, err)
}

func TestVaultProvider_KVv1DefaultField(t *testing.T) {
	srv := vaultServer(t, map[string]interface{}{"value": "plain"})
	p, err := secrets.NewVaultProvider(secrets.VaultConfig{Address: srv.URL, Token: "t"})
	require.NoError(t, err)

	got, err := p.Lookup(context.Background(), "secret/data/db")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)
}

func TestVaultProvider_MissingPath(t *testing.T) {
	srv := vaultServer(t, nil)
	p, err := secrets.NewVaultProvider(secrets.VaultConfig{Address: srv.URL, Token: "t"})
	require.NoError(t, err)

	_, err = p.Lookup(context.Background(), "secret/data/other#password")
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}
