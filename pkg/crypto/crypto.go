package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
)

var encryptionKey []byte

// SetEncryptionKey derives the AES-256 key used for OAuth tokens at rest.
// An empty secret disables encryption and values are stored verbatim.
func SetEncryptionKey(secret string) {
	if secret == "" {
		encryptionKey = nil
		return
	}

	sum := sha256.Sum256([]byte(secret))
	encryptionKey = sum[:]
}

// Encrypt seals a plain text string with AES-GCM and returns it base64 encoded.
func Encrypt(plainText string) (string, error) {
	if len(encryptionKey) == 0 {
		return plainText, nil
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a base64 encoded AES-GCM value. Inputs that do not parse as
// ciphertext are returned unchanged so rows written before a key was
// configured keep working.
func Decrypt(cipherText string) (string, error) {
	if len(encryptionKey) == 0 {
		return cipherText, nil
	}

	data, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return cipherText, nil
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return cipherText, nil
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
