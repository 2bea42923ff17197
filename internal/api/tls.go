package api

import (
	"crypto/tls"
	"fmt"
	"os"
)

// TLSConfig holds TLS certificate paths loaded from environment variables.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// tlsConfig is the package-level TLS configuration, set by InitTLS.
var tlsConfig *TLSConfig

// InitTLS loads SCHEMAGRAPH_TLS_CERT and SCHEMAGRAPH_TLS_KEY and checks
// that the pair loads. Call this before starting the server.
func InitTLS() error {
	certFile := os.Getenv("SCHEMAGRAPH_TLS_CERT")
	keyFile := os.Getenv("SCHEMAGRAPH_TLS_KEY")

	tlsConfig = nil
	if certFile == "" || keyFile == "" {
		return nil
	}
	if _, err := tls.LoadX509KeyPair(certFile, keyFile); err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	tlsConfig = &TLSConfig{CertFile: certFile, KeyFile: keyFile}
	return nil
}

// IsTLSEnabled returns true if TLS is configured.
func IsTLSEnabled() bool {
	return tlsConfig != nil && tlsConfig.CertFile != "" && tlsConfig.KeyFile != ""
}

// LoadTLSConfig loads a tls.Config from the cert and key files, or
// returns nil when TLS is off or the pair no longer loads.
func LoadTLSConfig() *tls.Config {
	if !IsTLSEnabled() {
		return nil
	}

	cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
	if err != nil {
		return nil
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
}
