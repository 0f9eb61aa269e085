// Package adaptive wraps AEAD ciphers behind one interface.
//
// Supported algorithms:
//
//   - AES-GCM: preferred when the CPU has hardware AES
//   - ChaCha20-Poly1305: fallback for other architectures
//   - XChaCha20-Poly1305: extended nonce variant, selectable by type
//
// Usage:
//
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(plaintext, aad)
//	plaintext, err := c.Decrypt(sealed, aad)
//
// Ciphertexts are nonce||sealed data. Store the cipher Type next to the
// ciphertext when it must be read on another machine.
package adaptive
