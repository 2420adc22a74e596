package certloader

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// CertLoader reloads a certificate key pair whenever the key file changes. It
// serves the state API certificate and the client certificate presented to
// the backend.
type CertLoader struct {
	// CertFile specifies the path to the x509 certificate.
	CertFile string
	// KeyFile specifies the path to the x509 private key.
	KeyFile string
	// mutex guards the cache, handshakes can run concurrently.
	mutex sync.Mutex
	// cachedCert will cache the loaded certificate key pair.
	cachedCert *tls.Certificate
	// cachedCertModTime is used to track the last modification time of the key file.
	cachedCertModTime time.Time
	// logger is the logger for logging.
	logger logr.Logger
}

// NewCertLoader creates a new CertLoader.
func NewCertLoader(logger logr.Logger, certFile string, keyFile string) *CertLoader {
	return &CertLoader{
		CertFile: certFile,
		KeyFile:  keyFile,
		logger:   logger.WithName("CertLoader"),
	}
}

// load returns the cached key pair, reloading it if the key file was modified.
func (certLoader *CertLoader) load() (*tls.Certificate, error) {
	certLoader.mutex.Lock()
	defer certLoader.mutex.Unlock()

	stat, err := os.Stat(certLoader.KeyFile)
	if err != nil {
		err = fmt.Errorf("failed checking key file: %s modification time: %w", certLoader.KeyFile, err)
		certLoader.logger.Error(err, "could not load information from key file", "certFile", certLoader.CertFile, "keyFile", certLoader.KeyFile)
		return nil, err
	}

	if certLoader.cachedCert == nil || stat.ModTime().After(certLoader.cachedCertModTime) {
		certLoader.logger.Info("loading new certificates", "certFile", certLoader.CertFile, "keyFile", certLoader.KeyFile, "cachedModificationTime", certLoader.cachedCertModTime.String(), "currentModificationTime", stat.ModTime().String())
		pair, err := tls.LoadX509KeyPair(certLoader.CertFile, certLoader.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed loading tls key pair: %w", err)
		}

		certLoader.cachedCert = &pair
		certLoader.cachedCertModTime = stat.ModTime()
	}

	return certLoader.cachedCert, nil
}

// GetCertificate returns the server certificate for the state API.
func (certLoader *CertLoader) GetCertificate(_ *tls.ClientHelloInfo) (*tls.Certificate, error) {
	return certLoader.load()
}

// GetClientCertificate returns the client certificate presented to the
// backend.
func (certLoader *CertLoader) GetClientCertificate(_ *tls.CertificateRequestInfo) (*tls.Certificate, error) {
	return certLoader.load()
}

// ServerConfig returns a TLS config for a server that uses the reloading
// certificate.
func (certLoader *CertLoader) ServerConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: certLoader.GetCertificate,
	}
}

// ClientConfig returns a TLS config for talking to the backend. The
// certLoader may be nil if no client certificate is required. If caFile is
// empty the system roots are used.
func ClientConfig(certLoader *CertLoader, caFile string) (*tls.Config, error) {
	config := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if certLoader != nil {
		config.GetClientCertificate = certLoader.GetClientCertificate
	}

	if caFile == "" {
		return config, nil
	}

	caBytes, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed reading CA file %s: %w", caFile, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("no certificates found in CA file %s", caFile)
	}
	config.RootCAs = pool

	return config, nil
}
