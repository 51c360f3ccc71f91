package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/connector-hub/connector-hub/internal/catalog"
	"github.com/connector-hub/connector-hub/internal/config"
	"github.com/connector-hub/connector-hub/internal/registry"
	"github.com/connector-hub/connector-hub/internal/secrets"
)

// loadDocuments gathers every descriptor document: the embedded catalog
// first, then any *.yaml/*.yml/*.json files in DESCRIPTOR_DIR. Directory
// documents can shadow builtin ones; the registry rejects duplicate keys
// within one pass, so a shadowed key surfaces as a load failure rather
// than a silent override.
func loadDocuments(descriptorDir string) ([]registry.Document, error) {
	assets, err := catalog.Assets()
	if err != nil {
		return nil, err
	}

	docs := make([]registry.Document, 0, len(assets))
	for _, a := range assets {
		docs = append(docs, registry.Document{Source: a.Name, Raw: a.Raw})
	}

	if descriptorDir == "" {
		return docs, nil
	}
	entries, err := os.ReadDir(descriptorDir)
	if err != nil {
		return nil, fmt.Errorf("read descriptor dir %s: %w", descriptorDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		path := filepath.Join(descriptorDir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read descriptor %s: %w", path, err)
		}
		docs = append(docs, registry.Document{Source: path, Raw: raw})
	}
	return docs, nil
}

func buildRegistry(descriptorDir string) (*registry.Registry, error) {
	docs, err := loadDocuments(descriptorDir)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	report := reg.Load(docs)
	for _, f := range report.Failures {
		slog.Warn("descriptor rejected", "source", f.Source, "unique_key", f.UniqueKey, "error", f.Err)
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("no loadable descriptors (%d failures)", len(report.Failures))
	}
	slog.Info("registry loaded", "connectors", reg.Len(), "failures", len(report.Failures))
	return reg, nil
}

func buildSecretsStore(cfg config.Config) (secrets.Store, error) {
	switch cfg.SecretsBackend {
	case config.SecretsBackendVault:
		return secrets.NewVaultStore(secrets.VaultOptions{
			Address:          cfg.VaultAddr,
			Namespace:        cfg.VaultNamespace,
			AuthType:         cfg.VaultAuthType,
			Token:            cfg.VaultToken,
			AppRoleMountPath: cfg.VaultAppRoleMountPath,
			AppRoleRoleID:    cfg.VaultAppRoleRoleID,
			AppRoleSecretID:  cfg.VaultAppRoleSecretID,
			KVMount:          cfg.VaultKVMount,
			TLSSkipVerify:    cfg.VaultTLSSkipVerify,
			TLSCACertPEM:     cfg.VaultCACertPEM,
		})
	default:
		return secrets.NewMemoryStore(), nil
	}
}
