package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// sealedPrefix marks the AES-GCM format written by sealToken.
const sealedPrefix = "v1."

var errSealedToken = errors.New("malformed sealed token")

// sealToken encrypts a provider refresh token for storage. The provider name
// is bound as additional data so a token cannot be replayed under another
// provider's identity row.
func sealToken(key, provider, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	aead, err := tokenAEAD(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(provider))
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// openToken reverses sealToken. An empty input yields an empty token.
func openToken(key, provider, sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	body, ok := strings.CutPrefix(sealed, sealedPrefix)
	if !ok {
		return "", errSealedToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return "", errSealedToken
	}
	aead, err := tokenAEAD(key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", errSealedToken
	}
	plaintext, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], []byte(provider))
	if err != nil {
		return "", fmt.Errorf("open sealed token: %w", err)
	}
	return string(plaintext), nil
}

// tokenAEAD accepts a raw AES key (16, 24 or 32 bytes) or the standard
// base64 encoding of one, as printed by `openssl rand -base64 32`.
func tokenAEAD(key string) (cipher.AEAD, error) {
	raw := []byte(strings.TrimSpace(key))
	if !validAESKeyLen(len(raw)) {
		decoded, err := base64.StdEncoding.DecodeString(string(raw))
		if err != nil || !validAESKeyLen(len(decoded)) {
			return nil, errors.New("token encryption key must be 16, 24 or 32 bytes, raw or base64")
		}
		raw = decoded
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func validAESKeyLen(n int) bool {
	return n == 16 || n == 24 || n == 32
}
