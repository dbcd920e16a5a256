package store

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// encryptionMagicHeader identifies encrypted backup files.
const encryptionMagicHeader = "ADEVENC1"

// Argon2id parameters per RFC 9106 recommendations.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLength    = 32
)

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// EncryptData encrypts data using AES-256-GCM with an Argon2id-derived key.
// Output layout: magic header + salt + nonce + ciphertext.
func EncryptData(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("encryption password required")
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, len(encryptionMagicHeader)+saltLength+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, encryptionMagicHeader...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// DecryptData reverses EncryptData. It fails on a missing header, truncated
// payload, wrong password, or tampered ciphertext.
func DecryptData(data []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("encryption password required")
	}
	if !IsEncrypted(data) {
		return nil, fmt.Errorf("data is not an encrypted profile backup")
	}
	data = data[len(encryptionMagicHeader):]
	if len(data) < saltLength {
		return nil, fmt.Errorf("encrypted data truncated")
	}
	salt := data[:saltLength]
	data = data[saltLength:]
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted data truncated")
	}
	nonce := data[:gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, data[gcm.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt backup: %w", err)
	}
	return plaintext, nil
}

// IsEncrypted reports whether data carries the encrypted backup header.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(encryptionMagicHeader))
}
