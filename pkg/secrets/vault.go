// Package secrets pulls deployment secrets from a Vault KV engine into the
// process environment before configuration is read.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultKeys are the settings that may come from Vault. Anything else in the
// secret is ignored.
var DefaultKeys = []string{
	"JWT_ACCESS_SECRET",
	"DB_USER",
	"DB_PASSWORD",
	"REDIS_PASSWORD",
	"SMTP_USERNAME",
	"SMTP_PASSWORD",
}

// VaultConfig locates one KV secret
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	// Overwrite lets Vault values replace variables already set
	Overwrite bool
	Keys      []string
}

// Result reports what Apply did
type Result struct {
	Enabled bool
	Path    string
	Loaded  []string
	Skipped []string
}

// ConfigFromEnv reads the VAULT_* variables
func ConfigFromEnv() VaultConfig {
	cfg := VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     "secret",
		Path:      os.Getenv("VAULT_PATH"),
		KVVersion: 2,
		Timeout:   5 * time.Second,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
		Keys:      DefaultKeys,
	}
	if mount := os.Getenv("VAULT_MOUNT"); mount != "" {
		cfg.Mount = mount
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		cfg.KVVersion = v
	}
	if ms, err := strconv.Atoi(os.Getenv("VAULT_TIMEOUT_MS")); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

// Apply fetches the secret and exports the allowed keys as environment
// variables. It is a no-op when Vault is disabled.
func Apply(ctx context.Context, cfg VaultConfig, client *http.Client) (Result, error) {
	result := Result{Enabled: cfg.Enabled, Path: cfg.Path}
	if !cfg.Enabled {
		return result, nil
	}
	if cfg.Addr == "" || cfg.Token == "" || cfg.Path == "" {
		return result, errors.New("vault configuration incomplete: VAULT_ADDR, VAULT_TOKEN and VAULT_PATH are required")
	}

	data, err := fetch(ctx, cfg, client)
	if err != nil {
		return result, err
	}

	allowed := make(map[string]bool, len(cfg.Keys))
	for _, k := range cfg.Keys {
		allowed[k] = true
	}

	for key, value := range data {
		if !allowed[key] {
			continue
		}
		if !cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		if err := os.Setenv(key, stringify(value)); err != nil {
			return result, err
		}
		result.Loaded = append(result.Loaded, key)
	}
	return result, nil
}

func fetch(ctx context.Context, cfg VaultConfig, client *http.Client) (map[string]interface{}, error) {
	url, err := secretURL(cfg.Addr, cfg.Mount, cfg.Path, cfg.KVVersion)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vault request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vault returned %s", resp.Status)
	}

	var payload struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid vault response: %w", err)
	}
	if payload.Data == nil {
		return nil, errors.New("vault response has no data")
	}
	if cfg.KVVersion == 1 {
		return payload.Data, nil
	}

	inner, ok := payload.Data["data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("vault response has no KV v2 data")
	}
	return inner, nil
}

func secretURL(addr, mount, path string, kvVersion int) (string, error) {
	addr = strings.TrimRight(addr, "/")
	mount = strings.Trim(mount, "/")
	path = strings.Trim(path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount and path must be set")
	}
	if kvVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}
