package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"
)

// VaultConfig holds HashiCorp Vault connection settings.
type VaultConfig struct {
	// Address is the Vault server address (e.g., "http://localhost:8200")
	Address string
	Token   string

	// Namespace is the Vault namespace (for Vault Enterprise)
	Namespace string
}

// VaultConfigFromEnv reads VAULT_ADDR, VAULT_TOKEN and VAULT_NAMESPACE.
func VaultConfigFromEnv() VaultConfig {
	return VaultConfig{
		Address:   os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
	}
}

// VaultProvider reads fields of KV secrets. References look like
// "secret/data/db#password"; a reference without "#field" reads the
// "value" field.
type VaultProvider struct {
	client *vaultapi.Client
}

var _ Provider = (*VaultProvider)(nil)

func NewVaultProvider(cfg VaultConfig) (*VaultProvider, error) {
	vaultConfig := vaultapi.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}

	client, err := vaultapi.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}
	return &VaultProvider{client: client}, nil
}

func (p *VaultProvider) Lookup(ctx context.Context, ref string) (string, error) {
	path, field, ok := strings.Cut(ref, "#")
	if !ok {
		field = "value"
	}

	secret, err := p.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}

	data := secret.Data
	// KV version 2 nests the fields under "data".
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}

	v, ok := data[field]
	if !ok {
		return "", fmt.Errorf("%s#%s: %w", path, field, ErrNotFound)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s#%s is %T, not a string", path, field, v)
	}
	return s, nil
}
