package adaptive

import (
	"bytes"
	"errors"
	"testing"
)

// Test key sizes
var (
	key16 = make([]byte, 16) // AES-128
	key24 = make([]byte, 24) // AES-192
	key32 = make([]byte, 32) // AES-256
)

func init() {
	for i := range key16 {
		key16[i] = byte(i)
	}
	for i := range key24 {
		key24[i] = byte(i)
	}
	for i := range key32 {
		key32[i] = byte(i)
	}
}

var allTypes = []CipherType{CipherAESGCM, CipherChaCha20, CipherXChaCha20}

func TestNew(t *testing.T) {
	c, err := New(key32)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Type() != Preferred() {
		t.Errorf("New() type = %s, want %s", c.Type(), Preferred())
	}
}

func TestNewWithType(t *testing.T) {
	for _, typ := range allTypes {
		t.Run(string(typ), func(t *testing.T) {
			c, err := NewWithType(key32, typ)
			if err != nil {
				t.Fatalf("NewWithType(%s) error = %v", typ, err)
			}
			if c.Type() != typ {
				t.Errorf("Type() = %s, want %s", c.Type(), typ)
			}
		})
	}

	if _, err := NewWithType(key32, "unknown-cipher"); !errors.Is(err, ErrUnknownCipher) {
		t.Errorf("NewWithType(unknown) error = %v, want ErrUnknownCipher", err)
	}
}

func TestKeySizes(t *testing.T) {
	tests := []struct {
		name    string
		typ     CipherType
		key     []byte
		wantErr bool
	}{
		{"AES-128", CipherAESGCM, key16, false},
		{"AES-192", CipherAESGCM, key24, false},
		{"AES-256", CipherAESGCM, key32, false},
		{"AES 15 bytes", CipherAESGCM, make([]byte, 15), true},
		{"AES 33 bytes", CipherAESGCM, make([]byte, 33), true},
		{"ChaCha20 32 bytes", CipherChaCha20, key32, false},
		{"ChaCha20 16 bytes", CipherChaCha20, key16, true},
		{"XChaCha20 32 bytes", CipherXChaCha20, key32, false},
		{"XChaCha20 24 bytes", CipherXChaCha20, key24, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithType(tt.key, tt.typ)
			if tt.wantErr && !errors.Is(err, ErrInvalidKeySize) {
				t.Errorf("error = %v, want ErrInvalidKeySize", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error = %v", err)
			}
		})
	}
}

func TestEncryptDecrypt(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
		aad       []byte
	}{
		{"empty", []byte{}, nil},
		{"token", []byte("session-token-value"), []byte("session/current")},
		{"large", bytes.Repeat([]byte("x"), 64*1024), nil},
	}

	for _, typ := range allTypes {
		c, _ := NewWithType(key32, typ)
		for _, tt := range tests {
			t.Run(string(typ)+"/"+tt.name, func(t *testing.T) {
				sealed, err := c.Encrypt(tt.plaintext, tt.aad)
				if err != nil {
					t.Fatalf("Encrypt() error = %v", err)
				}
				if len(sealed) != len(tt.plaintext)+c.Overhead() {
					t.Errorf("len(sealed) = %d, want %d", len(sealed), len(tt.plaintext)+c.Overhead())
				}

				got, err := c.Decrypt(sealed, tt.aad)
				if err != nil {
					t.Fatalf("Decrypt() error = %v", err)
				}
				if !bytes.Equal(got, tt.plaintext) {
					t.Error("Decrypt() did not return the plaintext")
				}
			})
		}
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	for _, typ := range allTypes {
		t.Run(string(typ), func(t *testing.T) {
			c, _ := NewWithType(key32, typ)
			sealed, _ := c.Encrypt([]byte("secret"), []byte("aad"))

			flipped := append([]byte(nil), sealed...)
			flipped[len(flipped)-1] ^= 0xff
			if _, err := c.Decrypt(flipped, []byte("aad")); err == nil {
				t.Error("Decrypt() should fail on tampered ciphertext")
			}

			if _, err := c.Decrypt(sealed, []byte("other")); err == nil {
				t.Error("Decrypt() should fail with different additional data")
			}
		})
	}
}

func TestDecrypt_TooShort(t *testing.T) {
	for _, typ := range allTypes {
		c, _ := NewWithType(key32, typ)
		if _, err := c.Decrypt(make([]byte, c.NonceSize()), nil); !errors.Is(err, ErrCiphertextTooShort) {
			t.Errorf("%s: Decrypt() error = %v, want ErrCiphertextTooShort", typ, err)
		}
	}
}

func TestNonceSize(t *testing.T) {
	want := map[CipherType]int{
		CipherAESGCM:    12,
		CipherChaCha20:  12,
		CipherXChaCha20: 24,
	}
	for typ, n := range want {
		c, _ := NewWithType(key32, typ)
		if c.NonceSize() != n {
			t.Errorf("%s: NonceSize() = %d, want %d", typ, c.NonceSize(), n)
		}
		if c.Overhead() != n+16 {
			t.Errorf("%s: Overhead() = %d, want %d", typ, c.Overhead(), n+16)
		}
	}
}

func TestEncrypt_Uniqueness(t *testing.T) {
	c, err := NewAESGCM(key32)
	if err != nil {
		t.Fatalf("NewAESGCM() error = %v", err)
	}

	plaintext := []byte("same plaintext")
	results := make(map[string]bool)

	// Same plaintext should produce different ciphertexts (random nonce)
	for i := 0; i < 10; i++ {
		ciphertext, err := c.Encrypt(plaintext, nil)
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if results[string(ciphertext)] {
			t.Error("Encrypt() produced duplicate ciphertext (nonce collision)")
		}
		results[string(ciphertext)] = true
	}
}

func BenchmarkEncrypt_1KB(b *testing.B) {
	plaintext := bytes.Repeat([]byte("A"), 1024)
	for _, typ := range allTypes {
		c, _ := NewWithType(key32, typ)
		b.Run(string(typ), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				c.Encrypt(plaintext, nil)
			}
		})
	}
}
