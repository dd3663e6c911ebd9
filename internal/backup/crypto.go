package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 200_000
	saltLen       = 16
	nonceLen      = 12
	keyLen        = 32
)

func deriveKey(passphrase string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keyLen, sha256.New)
}

func encrypt(plain []byte, passphrase string) (Encrypted, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return Encrypted{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return Encrypted{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt, kdfIterations))
	if err != nil {
		return Encrypted{}, fmt.Errorf("failed to init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return Encrypted{}, fmt.Errorf("failed to init GCM: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, plain, nil)

	return Encrypted{
		App:           appTag,
		SchemaVersion: schemaVersion,
		Encrypted:     true,
		Algo:          "AES-GCM",
		KDF:           "PBKDF2",
		Hash:          "SHA-256",
		Iterations:    kdfIterations,
		SaltB64:       base64.StdEncoding.EncodeToString(salt),
		IVB64:         base64.StdEncoding.EncodeToString(nonce),
		CiphertextB64: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

func decrypt(enc Encrypted, passphrase string) ([]byte, error) {
	if enc.Algo != "AES-GCM" || enc.KDF != "PBKDF2" || enc.Hash != "SHA-256" {
		return nil, fmt.Errorf("unsupported encryption scheme %s/%s/%s", enc.Algo, enc.KDF, enc.Hash)
	}
	if enc.Iterations <= 0 {
		return nil, fmt.Errorf("invalid KDF iteration count %d", enc.Iterations)
	}
	salt, err := base64.StdEncoding.DecodeString(enc.SaltB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(enc.IVB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(enc.CiphertextB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt, enc.Iterations))
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, len(nonce))
	if err != nil {
		return nil, fmt.Errorf("failed to init GCM: %w", err)
	}
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed, wrong passphrase or corrupt backup: %w", err)
	}
	return plain, nil
}
