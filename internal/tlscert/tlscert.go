// Package tlscert выпускает самоподписанный сертификат для локального HTTPS.
package tlscert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrCertExpired     = errors.New("certificate is expired")
	ErrCertNotValidYet = errors.New("certificate is not valid yet")
	ErrBlankPEM        = errors.New("pem is blank")
)

const validFor = 365 * 24 * time.Hour

// Option меняет шаблон сертификата перед подписью.
type Option func(*x509.Certificate)

// WithValidity задает интервал действия сертификата.
func WithValidity(notBefore, notAfter time.Time) Option {
	return func(c *x509.Certificate) {
		c.NotBefore = notBefore
		c.NotAfter = notAfter
	}
}

// Generate возвращает PEM сертификата и PEM приватного ключа ECDSA P-256.
// Сертификат выписан на localhost, 127.0.0.1 и ::1.
func Generate(opts ...Option) ([]byte, []byte, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128)) //nolint:mnd
	if err != nil {
		return nil, nil, fmt.Errorf("generate serial number: %w", err)
	}
	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{Organization: []string{"tinylink"}},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback}, //nolint:mnd
		NotBefore:    now.Add(-time.Minute),
		NotAfter:     now.Add(validFor),
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	for _, opt := range opts {
		opt(tmpl)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate private key: %w", err)
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal private key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, nil
}

// Check проверяет, что certPEM содержит действующий сертификат, а keyPEM не пуст.
func Check(certPEM, keyPEM []byte) error {
	if len(certPEM) == 0 || len(keyPEM) == 0 {
		return ErrBlankPEM
	}
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return errors.New("pem block is not a CERTIFICATE")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return fmt.Errorf("parse certificate: %w", err)
	}
	now := time.Now()
	if cert.NotBefore.After(now) {
		return ErrCertNotValidYet
	}
	if cert.NotAfter.Before(now) {
		return ErrCertExpired
	}
	return nil
}

// EnsurePair гарантирует наличие действующей пары по указанным путям.
// Отсутствующие, пустые и просроченные файлы перезаписываются новой парой.
//
// Параметры:
//   - certPath: путь к файлу сертификата
//   - keyPath: путь к файлу приватного ключа
//
// Возвращает:
//   - bool: true если пара была сгенерирована заново
//   - error: ошибка чтения, проверки или записи
func EnsurePair(certPath, keyPath string, opts ...Option) (bool, error) {
	certPEM, err := readOptional(certPath)
	if err != nil {
		return false, err
	}
	keyPEM, err := readOptional(keyPath)
	if err != nil {
		return false, err
	}

	checkErr := Check(certPEM, keyPEM)
	if checkErr == nil {
		return false, nil
	}
	if !errors.Is(checkErr, ErrBlankPEM) && !errors.Is(checkErr, ErrCertExpired) {
		return false, fmt.Errorf("check certificate %s: %w", certPath, checkErr)
	}

	certPEM, keyPEM, err = Generate(opts...)
	if err != nil {
		return false, err
	}
	if err = writeFile(certPath, certPEM, 0o644); err != nil { //nolint:mnd
		return false, err
	}
	if err = writeFile(keyPath, keyPEM, 0o600); err != nil { //nolint:mnd
		return false, err
	}
	return true, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
