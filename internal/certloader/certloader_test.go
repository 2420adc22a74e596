package certloader

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// writeKeyPair writes a self-signed certificate and its key into dir.
func writeKeyPair(dir string, commonName string) (string, string) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).NotTo(HaveOccurred())

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	Expect(err).NotTo(HaveOccurred())
	keyDer, err := x509.MarshalECPrivateKey(key)
	Expect(err).NotTo(HaveOccurred())

	certFile := filepath.Join(dir, "tls.crt")
	keyFile := filepath.Join(dir, "tls.key")
	Expect(os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600)).To(Succeed())
	Expect(os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer}), 0o600)).To(Succeed())

	return certFile, keyFile
}

func commonName(certLoader *CertLoader) string {
	cert, err := certLoader.GetCertificate(nil)
	Expect(err).NotTo(HaveOccurred())
	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	Expect(err).NotTo(HaveOccurred())

	return parsed.Subject.CommonName
}

var _ = Describe("Testing the certificate loader", func() {
	var dir, certFile, keyFile string
	var certLoader *CertLoader

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		certFile, keyFile = writeKeyPair(dir, "first")
		certLoader = NewCertLoader(GinkgoLogr, certFile, keyFile)
	})

	It("should load the key pair", func() {
		Expect(commonName(certLoader)).To(Equal("first"))
	})

	It("should serve the same pair as client certificate", func() {
		serverCert, err := certLoader.GetCertificate(nil)
		Expect(err).NotTo(HaveOccurred())
		clientCert, err := certLoader.GetClientCertificate(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(clientCert).To(BeIdenticalTo(serverCert))
	})

	When("the key pair is rotated", func() {
		BeforeEach(func() {
			Expect(commonName(certLoader)).To(Equal("first"))
			writeKeyPair(dir, "second")
			future := time.Now().Add(time.Minute)
			Expect(os.Chtimes(keyFile, future, future)).To(Succeed())
		})

		It("should load the new key pair", func() {
			Expect(commonName(certLoader)).To(Equal("second"))
		})
	})

	When("the key file is missing", func() {
		It("should return an error", func() {
			Expect(os.Remove(keyFile)).To(Succeed())
			_, err := certLoader.GetCertificate(nil)
			Expect(err).To(HaveOccurred())
		})
	})

	When("creating a server config", func() {
		It("should use the loader", func() {
			config := certLoader.ServerConfig()
			Expect(config.GetCertificate).NotTo(BeNil())
		})
	})

	When("creating a client config", func() {
		It("should work without a loader and CA file", func() {
			config, err := ClientConfig(nil, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(config.GetClientCertificate).To(BeNil())
			Expect(config.RootCAs).To(BeNil())
		})

		It("should load the CA file", func() {
			config, err := ClientConfig(certLoader, certFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(config.GetClientCertificate).NotTo(BeNil())
			Expect(config.RootCAs).NotTo(BeNil())
		})

		It("should reject a CA file without certificates", func() {
			_, err := ClientConfig(nil, keyFile)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a missing CA file", func() {
			_, err := ClientConfig(nil, filepath.Join(dir, "missing.crt"))
			Expect(err).To(HaveOccurred())
		})
	})
})
