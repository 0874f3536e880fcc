package credstore

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Key derivation parameters. Tuned for interactive use on a device.
const (
	saltLen = 16
	keyLen  = 32

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// sealedCodec encrypts the session file with XChaCha20-Poly1305 under an
// Argon2id derived key. Stored layout: salt || nonce || ciphertext. The
// salt travels with the file so the same passphrase reopens it after a
// reinstall of the app data directory.
type sealedCodec struct {
	passphrase []byte
}

// NewSealedFile creates a file store whose contents are unreadable without
// the passphrase. Stands in for OS keychain backed storage on platforms
// where no keychain bridge is available.
func NewSealedFile(dir string, passphrase string) (*File, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase must not be empty")
	}
	return newFile(dir, sealedCodec{passphrase: []byte(passphrase)})
}

func (c sealedCodec) encode(plain []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(c.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, saltLen+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plain, nil)...)
	return out, nil
}

func (c sealedCodec) decode(stored []byte) ([]byte, error) {
	if len(stored) < saltLen+chacha20poly1305.NonceSizeX {
		return nil, errors.New("sealed session too short")
	}

	salt := stored[:saltLen]
	nonce := stored[saltLen : saltLen+chacha20poly1305.NonceSizeX]
	ct := stored[saltLen+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(c.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("unseal session: %w", err)
	}
	return plain, nil
}

func (c sealedCodec) deriveKey(salt []byte) []byte {
	return argon2.IDKey(c.passphrase, salt, argonTime, argonMemory, argonThreads, keyLen)
}
