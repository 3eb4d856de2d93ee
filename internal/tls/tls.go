package tls

import (
	stdtls "crypto/tls"

	"code.cloudfoundry.org/tlsconfig"
)

type TLS struct {
	CAPath   string `env:"CA_PATH,   report"`
	CertPath string `env:"CERT_PATH, report"`
	KeyPath  string `env:"KEY_PATH,  report"`
}

func (t TLS) HasAnyCredential() bool {
	return t.CAPath != "" || t.CertPath != "" || t.KeyPath != ""
}

// ClientConfig builds a *tls.Config presenting this identity and trusting
// the configured authority, for dialing serverName over mutual TLS.
func (t TLS) ClientConfig(serverName string) (*stdtls.Config, error) {
	return tlsconfig.Build(
		tlsconfig.WithInternalServiceDefaults(),
		tlsconfig.WithIdentityFromFile(t.CertPath, t.KeyPath),
	).Client(
		tlsconfig.WithAuthorityFromFile(t.CAPath),
		tlsconfig.WithServerName(serverName),
	)
}
