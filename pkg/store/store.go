// Copyright 2025 Certen Protocol
//
// Package store implements the on-disk collaborator contract (spec.md
// §6): a home directory holding state.json, a config file, and a
// chains/ directory of one append-only log per chain label. Config is
// YAML via gopkg.in/yaml.v3, the same library this repository's anchor
// configuration loader (pkg/config.LoadAnchorConfig) uses. State and
// config writes follow this repository's BLS key manager convention
// (pkg/crypto/bls.KeyManager.SaveKey) of writing with restricted
// permissions, generalized here to write-to-temp-then-rename so a
// crash mid-write never leaves a half-written file in place.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"encoding/json"

	"github.com/arkin0x/cyberspace-cli/pkg/chain"
)

// HomeEnvVar is the environment variable that overrides the default
// home directory.
const HomeEnvVar = "CYBERSPACE_HOME"

// defaultHomeDirName is the directory created under the user's home
// directory when HomeEnvVar is unset.
const defaultHomeDirName = ".cyberspace"

// Home returns the cyberspace home directory: HomeEnvVar if set,
// otherwise "<user home>/.cyberspace".
func Home() (string, error) {
	if env := os.Getenv(HomeEnvVar); env != "" {
		return env, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: resolve user home directory: %w", err)
	}
	return filepath.Join(userHome, defaultHomeDirName), nil
}

// Target is a remembered named coordinate (spec.md §6).
type Target struct {
	Label    string `json:"label"`
	CoordHex string `json:"coord_hex"`
}

// State is the persisted identity/position/targets record (spec.md §6).
type State struct {
	Version           int      `json:"version"`
	PrivkeyHex        string   `json:"privkey_hex"`
	PubkeyHex         string   `json:"pubkey_hex"`
	CoordHex          string   `json:"coord_hex"`
	ActiveChainLabel  string   `json:"active_chain_label"`
	Targets           []Target `json:"targets"`
	ActiveTargetLabel string   `json:"active_target_label"`
}

// StateVersion is the current on-disk state schema version.
const StateVersion = 1

// StatePath returns the path to state.json under home.
func StatePath(home string) string {
	return filepath.Join(home, "state.json")
}

// LoadState reads and parses state.json. It returns os.ErrNotExist
// (wrapped) if no state file has been created yet; callers are expected
// to treat that as "missing state" per spec.md §7.
func LoadState(home string) (*State, error) {
	data, err := os.ReadFile(StatePath(home))
	if err != nil {
		return nil, fmt.Errorf("store: read state: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("store: parse state: %w", err)
	}
	return &s, nil
}

// SaveState atomically rewrites state.json: write to a temp file in the
// same directory, then rename over the target (spec.md §5, §6).
func SaveState(home string, s *State) error {
	if err := os.MkdirAll(home, 0700); err != nil {
		return fmt.Errorf("store: create home directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal state: %w", err)
	}
	return atomicWrite(StatePath(home), data, 0600)
}

// Config is the persisted default configuration (spec.md §6).
type Config struct {
	Version             int `yaml:"version"`
	DefaultMaxLCAHeight int `yaml:"default_max_lca_height"`
}

// DefaultMaxLCAHeight is the recommended default bound (spec.md §6).
const DefaultMaxLCAHeight = 16

// ConfigVersion is the current on-disk config schema version.
const ConfigVersion = 1

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{Version: ConfigVersion, DefaultMaxLCAHeight: DefaultMaxLCAHeight}
}

// ConfigPath returns the path to the config file under home.
func ConfigPath(home string) string {
	return filepath.Join(home, "config.yaml")
}

// LoadConfig reads and parses the config file, falling back to
// DefaultConfig if it does not yet exist.
func LoadConfig(home string) (Config, error) {
	data, err := os.ReadFile(ConfigPath(home))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("store: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("store: parse config: %w", err)
	}
	if cfg.DefaultMaxLCAHeight <= 0 {
		cfg.DefaultMaxLCAHeight = DefaultMaxLCAHeight
	}
	return cfg, nil
}

// SaveConfig atomically rewrites the config file.
func SaveConfig(home string, cfg Config) error {
	if err := os.MkdirAll(home, 0700); err != nil {
		return fmt.Errorf("store: create home directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("store: marshal config: %w", err)
	}
	return atomicWrite(ConfigPath(home), data, 0600)
}

// ChainsDir returns the directory holding one log file per chain label.
func ChainsDir(home string) string {
	return filepath.Join(home, "chains")
}

// ChainPath returns the path to a chain's log file: its normalized
// label with a .jsonl suffix (spec.md §6).
func ChainPath(home, label string) string {
	return filepath.Join(ChainsDir(home), chain.NormalizeLabel(label)+".jsonl")
}

// ListChainLabels returns the normalized labels of every chain log
// present under home's chains directory.
func ListChainLabels(home string) ([]string, error) {
	entries, err := os.ReadDir(ChainsDir(home))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: list chains: %w", err)
	}
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		const suffix = ".jsonl"
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			labels = append(labels, name[:len(name)-len(suffix)])
		}
	}
	return labels, nil
}

// atomicWrite writes data to a temp file in dir(path) then renames it
// over path, so a concurrent reader never observes a partial write.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("store: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("store: rename temp file: %w", err)
	}
	return nil
}
