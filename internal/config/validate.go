package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	if err := validateProviderConfig(cfg.Provider); err != nil {
		return err
	}

	if err := validateAnalysisConfig(cfg.Analysis); err != nil {
		return err
	}

	if cfg.Security.Enabled && len(cfg.Security.APIKeys) == 0 {
		return errors.New("security enabled but no api_keys configured")
	}

	if err := validateScreeningConfig(cfg.Screening); err != nil {
		return err
	}

	if err := validateLoggingConfig(cfg.Logging); err != nil {
		return err
	}

	if err := validateAuditConfig(cfg.Audit); err != nil {
		return err
	}

	if err := validateTelemetryConfig(cfg.Telemetry); err != nil {
		return err
	}

	return nil
}

func validateProviderConfig(p ProviderConfig) error {
	typ := strings.ToLower(strings.TrimSpace(p.Type))
	switch typ {
	case "openai", "gemini":
		if strings.TrimSpace(p.APIKeyEnv) == "" && strings.TrimSpace(p.APIKey) == "" {
			return fmt.Errorf("provider type %q missing api key (api_key_env or api_key)", typ)
		}
	case "static":
	default:
		return fmt.Errorf("provider.type must be openai, gemini or static, got %q", p.Type)
	}

	if p.BaseURL != "" {
		u, err := url.Parse(p.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("provider has invalid base_url")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("provider base_url must be http or https")
		}
		if err := blockPrivateHost(u.Host, p.AllowPrivateNetworks); err != nil {
			return fmt.Errorf("provider base_url blocked: %w", err)
		}
	}
	return nil
}

func validateAnalysisConfig(a AnalysisConfig) error {
	if strings.TrimSpace(a.Model) == "" {
		return errors.New("analysis.model must be set")
	}
	switch strings.ToLower(strings.TrimSpace(a.RubricVersion)) {
	case "", "v1", "v2":
		return nil
	default:
		return fmt.Errorf("analysis.rubric_version must be v1 or v2, got %q", a.RubricVersion)
	}
}

func validateScreeningConfig(s ScreeningConfig) error {
	if !s.Enabled {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s.Mode)) {
	case "", "observe", "block":
	default:
		return fmt.Errorf("screening.mode must be observe or block, got %q", s.Mode)
	}
	if s.BlockThreshold < 0 || s.BlockThreshold > 1 {
		return fmt.Errorf("screening.block_threshold must be in [0,1], got %v", s.BlockThreshold)
	}
	if s.WarnThreshold < 0 || s.WarnThreshold > 1 {
		return fmt.Errorf("screening.warn_threshold must be in [0,1], got %v", s.WarnThreshold)
	}
	if s.WarnThreshold > s.BlockThreshold {
		return errors.New("screening.warn_threshold must not exceed block_threshold")
	}
	return nil
}

func validateLoggingConfig(l LoggingConfig) error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "", "metadata", "redacted", "full":
		return nil
	default:
		return fmt.Errorf("logging.level must be metadata, redacted or full, got %q", l.Level)
	}
}

func validateAuditConfig(a AuditConfig) error {
	if len(a.Sinks) == 0 {
		return nil
	}
	for i, s := range a.Sinks {
		switch strings.ToLower(strings.TrimSpace(s.Type)) {
		case "stdout":
		case "file_jsonl":
			if strings.TrimSpace(s.Path) == "" {
				return fmt.Errorf("audit sink %d (file_jsonl) missing path", i)
			}
		case "webhook":
			if strings.TrimSpace(s.URL) == "" {
				return fmt.Errorf("audit sink %d (webhook) missing url", i)
			}
			u, err := url.Parse(s.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("audit sink %d (webhook) has invalid url", i)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("audit sink %d (webhook) url must be http or https", i)
			}
		default:
			return fmt.Errorf("audit sink %d has unknown type %q", i, s.Type)
		}
	}
	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	if t.Protocol != "" {
		switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
		case "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
		}
	}
	return nil
}

func blockPrivateHost(hostport string, allowPrivate bool) error {
	if allowPrivate {
		return nil
	}
	host := hostport
	if strings.Contains(hostport, "]") || strings.Contains(hostport, ":") {
		h, _, err := net.SplitHostPort(hostport)
		if err == nil {
			host = h
		}
	}
	lc := strings.ToLower(strings.TrimSpace(host))
	if lc == "localhost" {
		return errors.New("private network host localhost blocked for SSRF safety")
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return fmt.Errorf("private network IP %s blocked for SSRF safety", ip.String())
		}
		return nil
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	privateBlocks := []*net.IPNet{
		{IP: net.ParseIP("127.0.0.0"), Mask: net.CIDRMask(8, 32)},
		{IP: net.ParseIP("10.0.0.0"), Mask: net.CIDRMask(8, 32)},
		{IP: net.ParseIP("172.16.0.0"), Mask: net.CIDRMask(12, 32)},
		{IP: net.ParseIP("192.168.0.0"), Mask: net.CIDRMask(16, 32)},
		{IP: net.ParseIP("169.254.0.0"), Mask: net.CIDRMask(16, 32)},
		{IP: net.ParseIP("::1"), Mask: net.CIDRMask(128, 128)},
		{IP: net.ParseIP("fc00::"), Mask: net.CIDRMask(7, 128)},
		{IP: net.ParseIP("fe80::"), Mask: net.CIDRMask(10, 128)},
	}
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}
