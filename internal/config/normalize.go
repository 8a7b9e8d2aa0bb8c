package config

import "strings"

// Normalize applies post-validation normalization.
// It MUST be called only after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Soil.Mode = strings.ToLower(strings.TrimSpace(cfg.Soil.Mode))

	// Passed verbatim to TLS and the broker.
	cfg.AWS.Endpoint = strings.TrimSpace(cfg.AWS.Endpoint)
	cfg.AWS.ClientID = strings.TrimSpace(cfg.AWS.ClientID)
	cfg.AWS.Topic = strings.TrimRight(strings.TrimSpace(cfg.AWS.Topic), "/")
	cfg.AWS.Cert = strings.TrimSpace(cfg.AWS.Cert)
	cfg.AWS.Key = strings.TrimSpace(cfg.AWS.Key)
	cfg.AWS.CA = strings.TrimSpace(cfg.AWS.CA)
}
