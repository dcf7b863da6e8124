package crypto

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"testing"
)

func TestEncryptDecrypt(t *testing.T) {
	enc, err := NewSecretEncryptor("a passphrase")
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	plaintext := "JBSWY3DPEHPK3PXP"
	encrypted, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if encrypted == plaintext {
		t.Fatal("ciphertext should differ from plaintext")
	}

	decrypted, err := enc.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if decrypted != plaintext {
		t.Errorf("round trip mismatch: %q != %q", decrypted, plaintext)
	}
}

func TestEncrypt_NoncesDiffer(t *testing.T) {
	enc, _ := NewSecretEncryptor("a passphrase")

	a, _ := enc.Encrypt("same input")
	b, _ := enc.Encrypt("same input")
	if a == b {
		t.Error("repeated encryption should produce different ciphertexts")
	}
}

func TestEncryptDecrypt_EmptyPassthrough(t *testing.T) {
	enc, _ := NewSecretEncryptor("a passphrase")

	if out, err := enc.Encrypt(""); err != nil || out != "" {
		t.Errorf("empty plaintext should pass through, got %q, %v", out, err)
	}
	if out, err := enc.Decrypt(""); err != nil || out != "" {
		t.Errorf("empty ciphertext should pass through, got %q, %v", out, err)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	a, _ := NewSecretEncryptor("key-a")
	b, _ := NewSecretEncryptor("key-b")

	encrypted, _ := a.Encrypt("secret material")
	if _, err := b.Decrypt(encrypted); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecrypt_Garbage(t *testing.T) {
	enc, _ := NewSecretEncryptor("a passphrase")

	for _, in := range []string{"not base64!!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		if _, err := enc.Decrypt(in); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("input %q: expected ErrDecryptionFailed, got %v", in, err)
		}
	}
}

func TestNewSecretEncryptor_EmptyKey(t *testing.T) {
	if _, err := NewSecretEncryptor(""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestNewSecretEncryptor_Base64Key(t *testing.T) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	key := base64.StdEncoding.EncodeToString(raw)

	a, err := NewSecretEncryptor(key)
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}
	b, _ := NewSecretEncryptor(key)

	encrypted, _ := a.Encrypt("shared")
	decrypted, err := b.Decrypt(encrypted)
	if err != nil || decrypted != "shared" {
		t.Errorf("same key should decrypt, got %q, %v", decrypted, err)
	}
}

func TestNewTOTPSecret(t *testing.T) {
	secret, err := NewTOTPSecret()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 20 bytes base32 without padding is 32 characters.
	if len(secret) != 32 {
		t.Errorf("unexpected length: %d", len(secret))
	}
	if _, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret); err != nil {
		t.Errorf("secret should be valid base32: %v", err)
	}

	other, _ := NewTOTPSecret()
	if secret == other {
		t.Error("secrets should be random")
	}
}
