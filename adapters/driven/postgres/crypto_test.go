package postgres

import (
	"errors"
	"testing"
)

func testKey() []byte {
	return []byte("01234567890123456789012345678901")
}

func TestSecretEncryptor_RoundTrip(t *testing.T) {
	encryptor, err := NewSecretEncryptor(testKey())
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	secret := "confidential-client-secret"

	blob, err := encryptor.Encrypt(secret)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Verify blob format
	if len(blob) < 1+nonceSize {
		t.Fatalf("blob too short: %d bytes", len(blob))
	}
	if blob[0] != secretVersion {
		t.Errorf("version byte: got %d, want %d", blob[0], secretVersion)
	}

	decrypted, err := encryptor.Decrypt(blob)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != secret {
		t.Errorf("got %q, want %q", decrypted, secret)
	}
}

func TestSecretEncryptor_InvalidKeySize(t *testing.T) {
	tests := []struct {
		name    string
		keySize int
	}{
		{"too short", 16},
		{"too long", 64},
		{"empty", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keySize)
			_, err := NewSecretEncryptor(key)
			if !errors.Is(err, ErrInvalidKeySize) {
				t.Errorf("expected ErrInvalidKeySize, got %v", err)
			}
		})
	}
}

func TestSecretEncryptor_WrongKey(t *testing.T) {
	enc1, err := NewSecretEncryptor(testKey())
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}
	enc2, err := NewSecretEncryptor([]byte("another-key-entirely-32-bytes-ok"))
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	blob, err := enc1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := enc2.Decrypt(blob); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestSecretEncryptor_TamperedBlob(t *testing.T) {
	encryptor, err := NewSecretEncryptor(testKey())
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	blob, err := encryptor.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	t.Run("unsupported version", func(t *testing.T) {
		bad := append([]byte{}, blob...)
		bad[0] = 0x7f
		if _, err := encryptor.Decrypt(bad); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("expected ErrUnsupportedVersion, got %v", err)
		}
	})

	t.Run("flipped ciphertext bit", func(t *testing.T) {
		bad := append([]byte{}, blob...)
		bad[len(bad)-1] ^= 0x01
		if _, err := encryptor.Decrypt(bad); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("expected ErrDecryptionFailed, got %v", err)
		}
	})

	t.Run("truncated blob", func(t *testing.T) {
		if _, err := encryptor.Decrypt(blob[:5]); !errors.Is(err, ErrInvalidBlobSize) {
			t.Errorf("expected ErrInvalidBlobSize, got %v", err)
		}
	})
}

func TestSecretEncryptor_FromPassphrase(t *testing.T) {
	salt := []byte("stable-salt-value")

	enc1, err := NewSecretEncryptorFromPassphrase("correct horse battery staple", salt)
	if err != nil {
		t.Fatalf("NewSecretEncryptorFromPassphrase: %v", err)
	}

	blob, err := enc1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Same passphrase and salt derive the same key.
	enc2, err := NewSecretEncryptorFromPassphrase("correct horse battery staple", salt)
	if err != nil {
		t.Fatalf("NewSecretEncryptorFromPassphrase: %v", err)
	}
	decrypted, err := enc2.Decrypt(blob)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != "secret" {
		t.Errorf("got %q, want secret", decrypted)
	}

	// A different passphrase must not.
	enc3, err := NewSecretEncryptorFromPassphrase("wrong passphrase", salt)
	if err != nil {
		t.Fatalf("NewSecretEncryptorFromPassphrase: %v", err)
	}
	if _, err := enc3.Decrypt(blob); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestSecretEncryptor_ShortSalt(t *testing.T) {
	_, err := NewSecretEncryptorFromPassphrase("passphrase", []byte("short"))
	if !errors.Is(err, ErrInvalidSaltSize) {
		t.Errorf("expected ErrInvalidSaltSize, got %v", err)
	}
}
