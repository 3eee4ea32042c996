// Package credentials stores the CLI's server URL and login tokens. The URL
// lives in a small YAML file; tokens go to the OS keyring.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	keyringService = "bakchoddost"
	configFileName = "config.yaml"
)

// ErrNoServer is returned when no server has been configured via login.
var ErrNoServer = errors.New("no server configured; run 'bakchoddost login <url>' first")

// ErrNoToken is returned when the keyring holds no token for the server.
var ErrNoToken = errors.New("not logged in; run 'bakchoddost login <url>' first")

// Config is the CLI configuration file.
type Config struct {
	DefaultServer string `yaml:"default_server"`
	Email         string `yaml:"email,omitempty"`
}

// Store reads and writes CLI credentials under dir.
type Store struct {
	dir string
}

// New opens the store in the default config directory.
func New() (*Store, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("determining config directory: %w", err)
	}
	return Open(dir), nil
}

// Open returns a store rooted at dir.
func Open(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the CLI config directory. BAKCHODDOST_CONFIG_DIR
// overrides it.
func DefaultDir() (string, error) {
	if dir := os.Getenv("BAKCHODDOST_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "bakchoddost"), nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, configFileName)
}

// LoadConfig reads the config file. A missing file yields an empty Config.
func (s *Store) LoadConfig() (*Config, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path(), err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path(), err)
	}
	return &cfg, nil
}

// SaveConfig writes the config file.
func (s *Store) SaveConfig(cfg *Config) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path(), err)
	}
	return nil
}

// SaveLogin records serverURL as the default server and stores its token.
func (s *Store) SaveLogin(serverURL, email, token string) error {
	if err := keyring.Set(keyringService, serverURL, token); err != nil {
		return fmt.Errorf("saving token to keyring: %w", err)
	}
	return s.SaveConfig(&Config{DefaultServer: serverURL, Email: email})
}

// Current returns the default server URL and its token.
func (s *Store) Current() (serverURL, token string, err error) {
	cfg, err := s.LoadConfig()
	if err != nil {
		return "", "", err
	}
	if cfg.DefaultServer == "" {
		return "", "", ErrNoServer
	}
	token, err = keyring.Get(keyringService, cfg.DefaultServer)
	if errors.Is(err, keyring.ErrNotFound) {
		return cfg.DefaultServer, "", ErrNoToken
	}
	if err != nil {
		return cfg.DefaultServer, "", fmt.Errorf("reading token from keyring: %w", err)
	}
	return cfg.DefaultServer, token, nil
}

// Logout forgets the token for the default server.
func (s *Store) Logout() error {
	cfg, err := s.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.DefaultServer == "" {
		return nil
	}
	if err := keyring.Delete(keyringService, cfg.DefaultServer); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("removing token from keyring: %w", err)
	}
	return nil
}
