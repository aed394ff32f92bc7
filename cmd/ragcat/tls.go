package main

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/ragcat-dev/ragcat/internal/config"
)

// tlsConfigFor builds the document store's TLS configuration from
// spec.md §6's {use_ssl, verify_certs, ca_cert_path} group. A missing
// or unreadable CA file falls back to the system pool rather than
// failing startup; verify_certs=false is honored only when explicitly set.
func tlsConfigFor(cfg config.DocumentStoreConfig) *tls.Config {
	tc := &tls.Config{InsecureSkipVerify: !cfg.VerifyCerts}
	if cfg.CACertPath == "" {
		return tc
	}
	pem, err := os.ReadFile(cfg.CACertPath)
	if err != nil {
		return tc
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if pool.AppendCertsFromPEM(pem) {
		tc.RootCAs = pool
	}
	return tc
}
