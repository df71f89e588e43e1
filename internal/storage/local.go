package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/johanforsgren/mantella/internal/domain"
	"github.com/johanforsgren/mantella/internal/logger"
)

const (
	configDir  = ".mantella"
	configFile = "credentials.json"
)

// LocalRepository stores the credential as JSON in a file only the current
// user can read.
type LocalRepository struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// DefaultPath is ~/.mantella/credentials.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir, configFile), nil
}

func NewLocalRepository() (*LocalRepository, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewLocalRepositoryAt(configPath)
}

func NewLocalRepositoryAt(configPath string) (*LocalRepository, error) {
	repo := &LocalRepository{
		configPath: configPath,
		config:     &Config{},
	}

	if err := repo.ensureConfigDir(); err != nil {
		return nil, err
	}

	if err := repo.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return repo, nil
}

func (r *LocalRepository) ensureConfigDir() error {
	dir := filepath.Dir(r.configPath)
	return os.MkdirAll(dir, 0700)
}

func (r *LocalRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.LogFileOpen(r.configPath)
	data, err := os.ReadFile(r.configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.LogError("LOAD", r.configPath, err)
		}
		return err
	}

	if err := json.Unmarshal(data, r.config); err != nil {
		logger.LogError("UNMARSHAL", r.configPath, err)
		return err
	}

	logger.Log("Credentials loaded from %s", r.configPath)
	return nil
}

func (r *LocalRepository) save() error {
	data, err := json.MarshalIndent(r.config, "", "  ")
	if err != nil {
		logger.LogError("MARSHAL", r.configPath, err)
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	logger.LogFileWrite(r.configPath)
	if err := os.WriteFile(r.configPath, data, 0600); err != nil {
		logger.LogError("SAVE", r.configPath, err)
		return err
	}

	logger.Log("Credentials saved to %s", r.configPath)
	return nil
}

func (r *LocalRepository) Save(ctx context.Context, cred domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Log("Saving credentials for %s on %s", cred.Username, cred.Server)
	r.config.Credential = &cred
	return r.save()
}

func (r *LocalRepository) Get(ctx context.Context) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.config.Credential == nil {
		return nil, nil
	}
	cred := *r.config.Credential
	return &cred, nil
}

func (r *LocalRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Log("Clearing stored credentials")
	r.config.Credential = nil
	if err := os.Remove(r.configPath); err != nil && !os.IsNotExist(err) {
		logger.LogError("CLEAR", r.configPath, err)
		return err
	}
	return nil
}

func (r *LocalRepository) Path() string {
	return r.configPath
}
