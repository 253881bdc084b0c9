// Package secure stores the auth bearer token at rest, standing in for the
// platform keychain. The token is sealed with AES-GCM under a key derived
// from a per-install device secret, and retrieval is gated by biometric
// proof: without biometric support the token is simply not retrievable after
// a process restart.
package secure

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"

	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
)

const (
	secretFile = "device.secret"
	tokenFile  = "token.bin"
)

// ErrBiometricDenied is returned when the biometric prompt is rejected.
var ErrBiometricDenied = errors.New("biometric authentication denied")

// BiometricGate abstracts the platform biometric prompt.
type BiometricGate interface {
	// Supported reports whether the device can perform biometric checks.
	Supported() bool
	// Authenticate blocks until the user passes or rejects the prompt.
	Authenticate(ctx context.Context, reason string) error
}

// TokenStore persists one bearer token under a fixed service directory.
type TokenStore struct {
	dir    string
	gate   BiometricGate
	secret []byte
	logger *applog.Logger
}

// New opens (or initializes) the store at dir. The per-install device secret
// is created on first use with 0600 permissions.
func New(dir string, gate BiometricGate, logger *applog.Logger) (*TokenStore, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create secure dir: %w", err)
	}

	secret, err := loadOrCreateSecret(filepath.Join(dir, secretFile))
	if err != nil {
		return nil, err
	}

	return &TokenStore{
		dir:    dir,
		gate:   gate,
		secret: secret,
		logger: logger.WithComponent(applog.ComponentSecure),
	}, nil
}

// Save seals the token and writes it to disk.
func (s *TokenStore) Save(token string) error {
	key, err := s.deriveKey()
	if err != nil {
		return err
	}
	blob, err := encryptAESGCM(key, []byte(token))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), blob, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Load returns the stored token, or "" when none is retrievable. Without
// biometric support no token is ever returned; a rejected prompt is an error.
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	if s.gate == nil || !s.gate.Supported() {
		s.logger.DebugContext(ctx, "biometric unavailable, token not retrievable")
		return "", nil
	}
	if err := s.gate.Authenticate(ctx, "Unlock your FinanZ session"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBiometricDenied, err)
	}

	blob, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	key, err := s.deriveKey()
	if err != nil {
		return "", err
	}
	plain, err := decryptAESGCM(key, blob)
	if err != nil {
		return "", fmt.Errorf("unseal token: %w", err)
	}
	return string(plain), nil
}

// Reset removes the stored token. Missing files are not an error; every
// forced-logout path calls this unconditionally.
func (s *TokenStore) Reset() error {
	err := os.Remove(filepath.Join(s.dir, tokenFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *TokenStore) deriveKey() ([]byte, error) {
	h := hkdf.New(sha256.New, s.secret, nil, []byte("finanz-token-key"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	return key, nil
}

func loadOrCreateSecret(path string) ([]byte, error) {
	if secret, err := os.ReadFile(path); err == nil {
		if len(secret) != 32 {
			return nil, errors.New("device secret corrupted")
		}
		return secret, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read device secret: %w", err)
	}

	secret := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, fmt.Errorf("generate device secret: %w", err)
	}
	if err := os.WriteFile(path, secret, 0600); err != nil {
		return nil, fmt.Errorf("write device secret: %w", err)
	}
	return secret, nil
}

func encryptAESGCM(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ct := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ct...), nil
}

func decryptAESGCM(key, blob []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	ns := gcm.NonceSize()
	if len(blob) < ns {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, blob[:ns], blob[ns:], nil)
}
