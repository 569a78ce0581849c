// Package session remembers the authenticated user between runs. The OS
// keyring is preferred; a private YAML file is the fallback.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/saravenpi/chorus/internal/models"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	AppID      = "com.saravenpi.chorus"
	sessionKey = "session"
)

var ErrNoSession = errors.New("no saved session")

type Session struct {
	User  models.User `json:"user" yaml:"user"`
	Token string      `json:"token" yaml:"token"`
}

type Store interface {
	Save(s Session) error
	Load() (*Session, error)
	Erase() error
}

// Open returns a keyring-backed store when the keyring answers, otherwise a
// file store at path.
func Open(path string) Store {
	if _, err := keyring.Get(AppID, sessionKey); err == nil || errors.Is(err, keyring.ErrNotFound) {
		return KeyringStore{}
	}
	return FileStore{Path: path}
}

type KeyringStore struct{}

func (KeyringStore) Save(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := keyring.Set(AppID, sessionKey, string(data)); err != nil {
		return fmt.Errorf("failed to write session to keyring: %w", err)
	}
	return nil
}

func (KeyringStore) Load() (*Session, error) {
	data, err := keyring.Get(AppID, sessionKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("couldn't load session from keyring: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &s, nil
}

func (KeyringStore) Erase() error {
	if err := keyring.Delete(AppID, sessionKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to erase session: %w", err)
	}
	return nil
}

type FileStore struct {
	Path string
}

func (f FileStore) path() (string, error) {
	return homedir.Expand(f.Path)
}

func (f FileStore) Save(s Session) error {
	path, err := f.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (f FileStore) Load() (*Session, error) {
	path, err := f.path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if s.Token == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (f FileStore) Erase() error {
	path, err := f.path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}
