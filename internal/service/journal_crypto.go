package service

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrCipherSecretRequired 在未配置日记加密密钥时返回
	ErrCipherSecretRequired = errors.New("journal encryption secret is required")
	// ErrCiphertextInvalid 在密文无法解析或认证失败时返回
	ErrCiphertextInvalid = errors.New("journal ciphertext is invalid")
)

// JournalCipher 负责日记正文的落库加密。
// 密钥由配置的口令经 SHA-256 派生，算法为 XChaCha20-Poly1305，
// 随机 nonce 前置拼接后整体 base64 编码存储。
type JournalCipher struct {
	aead cipher.AEAD
}

// NewJournalCipher 根据口令构造加密器
func NewJournalCipher(secret string) (*JournalCipher, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrCipherSecretRequired
	}

	key := sha256.Sum256([]byte(secret))
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("init journal cipher: %w", err)
	}

	return &JournalCipher{aead: aead}, nil
}

// Encrypt 加密明文并返回 base64 编码的密文
func (c *JournalCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt 解密 Encrypt 产出的密文
func (c *JournalCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrCiphertextInvalid
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrCiphertextInvalid
	}

	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrCiphertextInvalid
	}

	return string(plain), nil
}
