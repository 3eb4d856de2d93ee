package config

import (
	stdtls "crypto/tls"

	"code.cloudfoundry.org/tlsconfig"
)

// MetricsServer stores the configuration for the metrics server
type MetricsServer struct {
	Port     uint16 `env:"METRICS_PORT, report"`
	CAFile   string `env:"METRICS_CA_FILE_PATH, report"`
	CertFile string `env:"METRICS_CERT_FILE_PATH, report"`
	KeyFile  string `env:"METRICS_KEY_FILE_PATH, report"`
}

// Enabled reports whether a metrics server was actually configured.
func (m MetricsServer) Enabled() bool {
	return m.Port != 0
}

// TLSConfig builds the server-side *tls.Config the metrics listener
// presents, requiring a client certificate signed by CAFile.
func (m MetricsServer) TLSConfig() (*stdtls.Config, error) {
	return tlsconfig.Build(
		tlsconfig.WithInternalServiceDefaults(),
		tlsconfig.WithIdentityFromFile(m.CertFile, m.KeyFile),
	).Server(
		tlsconfig.WithClientAuthenticationFromFile(m.CAFile),
	)
}
