package tlsroots

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	if NewPool().Pool() == nil {
		t.Fatal("NewPool().Pool() returned nil")
	}
	if NewEmptyPool().Pool() == nil {
		t.Fatal("NewEmptyPool().Pool() returned nil")
	}
}

func TestAddCertPEM(t *testing.T) {
	keyBlock := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{1, 2, 3}})
	badCert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("not der")})

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		anyErr  bool
	}{
		{"single", generateTestCertPEM(t), nil, false},
		{"bundle", append(generateTestCertPEM(t), generateTestCertPEM(t)...), nil, false},
		{"key block skipped", append(keyBlock, generateTestCertPEM(t)...), nil, false},
		{"empty", nil, ErrNoCertsFound, true},
		{"only key", keyBlock, ErrNoCertsFound, true},
		{"invalid der", badCert, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEmptyPool().AddCertPEM(tt.data)
			if tt.anyErr != (err != nil) {
				t.Fatalf("AddCertPEM() error = %v, wantErr %v", err, tt.anyErr)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("AddCertPEM() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddPath_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, generateTestCertPEM(t), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	pool := NewEmptyPool()
	if err := pool.AddPath(path); err != nil {
		t.Fatalf("AddPath() error = %v", err)
	}
	if got := pool.Sources(); len(got) != 1 || got[0] != path {
		t.Errorf("Sources() = %v, want [%s]", got, path)
	}
}

func TestAddPath_Dir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ca1.pem", "ca2.CRT", "ca3.cer"} {
		if err := os.WriteFile(filepath.Join(dir, name), generateTestCertPEM(t), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	pool := NewEmptyPool()
	if err := pool.AddPath(dir); err != nil {
		t.Fatalf("AddPath() error = %v", err)
	}
	if got := len(pool.Sources()); got != 3 {
		t.Errorf("len(Sources()) = %d, want 3", got)
	}
}

func TestAddPath_NotFound(t *testing.T) {
	if err := NewEmptyPool().AddPath("/nonexistent/ca.pem"); err == nil {
		t.Error("AddPath() expected error for missing path")
	}
}

func TestAddCertDir_Errors(t *testing.T) {
	t.Run("empty dir", func(t *testing.T) {
		err := NewEmptyPool().AddCertDir(t.TempDir())
		if !errors.Is(err, ErrNoCertsFound) {
			t.Errorf("AddCertDir() error = %v, want ErrNoCertsFound", err)
		}
	})

	t.Run("bad file reported", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "good.pem"), generateTestCertPEM(t), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "bad.pem"), []byte("garbage"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		pool := NewEmptyPool()
		err := pool.AddCertDir(dir)
		if !errors.Is(err, ErrNoCertsFound) {
			t.Errorf("AddCertDir() error = %v, want the bad file reported", err)
		}
		if got := len(pool.Sources()); got != 1 {
			t.Errorf("len(Sources()) = %d, want 1", got)
		}
	})

	t.Run("missing dir", func(t *testing.T) {
		if err := NewEmptyPool().AddCertDir("/nonexistent/directory"); err == nil {
			t.Error("AddCertDir() expected error for missing directory")
		}
	})
}

func TestClientConfig(t *testing.T) {
	pool := NewEmptyPool()

	cfg, err := pool.ClientConfig("", "")
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}
	if cfg.RootCAs != pool.Pool() {
		t.Error("ClientConfig().RootCAs != pool.Pool()")
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %v, want TLS 1.2", cfg.MinVersion)
	}
	if len(cfg.Certificates) != 0 {
		t.Errorf("len(Certificates) = %d, want 0", len(cfg.Certificates))
	}
}

func TestClientConfig_ClientCertificate(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "client.crt")
	keyFile := filepath.Join(dir, "client.key")
	generateTestCertAndKey(t, certFile, keyFile)

	cfg, err := NewEmptyPool().ClientConfig(certFile, keyFile)
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Errorf("len(Certificates) = %d, want 1", len(cfg.Certificates))
	}
}

func TestClientConfig_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		certFile string
		keyFile  string
	}{
		{"cert without key", "/tmp/client.crt", ""},
		{"key without cert", "", "/tmp/client.key"},
		{"missing files", "/nonexistent/cert", "/nonexistent/key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEmptyPool().ClientConfig(tt.certFile, tt.keyFile); err == nil {
				t.Error("ClientConfig() expected error")
			}
		})
	}
}

// generateTestCertPEM generates a self-signed certificate in PEM format.
func generateTestCertPEM(t *testing.T) []byte {
	t.Helper()

	cert := generateTestCert(t)
	return pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.Raw,
	})
}

// generateTestCert generates a self-signed certificate.
func generateTestCert(t *testing.T) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   "test.local",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}

	return cert
}

// generateTestCertAndKey generates a self-signed certificate and key pair.
func generateTestCertAndKey(t *testing.T, certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   "test.local",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}

	// Write cert
	certPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: certDER,
	})
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("WriteFile(cert) error = %v", err)
	}

	// Write key
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: keyDER,
	})
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		t.Fatalf("WriteFile(key) error = %v", err)
	}
}
