package config

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppName is used for the XDG config directory.
const AppName = "memefetch"

const (
	// DefaultDownloadsPath is relative to the working directory.
	DefaultDownloadsPath = "public/memes"

	// DefaultTimeout bounds each request, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is browser-like; some image hosts reject empty or
	// library default agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Report formats accepted by ReportFormat.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath          string            `yaml:"downloads_path"`
	CatalogPath            string            `yaml:"catalog_path,omitempty"`
	Timeout                time.Duration     `yaml:"timeout"`
	UserAgent              string            `yaml:"user_agent"`
	Headers                map[string]string `yaml:"headers,omitempty"`
	MaxConcurrentDownloads int               `yaml:"max_concurrent_downloads"`

	// Image post-processing
	ConvertImages bool `yaml:"convert_images"`
	MaxImageSize  int  `yaml:"max_image_size"`

	// Output
	ReportFormat string `yaml:"report_format"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadsPath:          DefaultDownloadsPath,
		Timeout:                DefaultTimeout,
		UserAgent:              DefaultUserAgent,
		MaxConcurrentDownloads: 1,
		ConvertImages:          false,
		MaxImageSize:           0,
		ReportFormat:           FormatText,
	}
}

// DefaultPath returns the settings file location under the XDG config home.
// On Linux: ~/.config/memefetch/config.yaml
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads settings from a YAML file.
//
// Values missing from the file keep their defaults. A missing file yields
// DefaultSettings and no error.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path is user supplied on purpose
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, errors.Wrap(err, "read settings")
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, errors.Wrapf(err, "parse settings %s", path)
	}

	return settings, nil
}

// Save writes settings to a YAML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create settings directory")
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings and returns the first problem found.
func (s *Settings) Validate() error {
	switch {
	case strings.TrimSpace(s.DownloadsPath) == "":
		return errors.New("downloads path must not be empty")
	case s.Timeout <= 0:
		return errors.Errorf("timeout must be positive, got %s", s.Timeout)
	case strings.TrimSpace(s.UserAgent) == "":
		return errors.New("user agent must not be empty")
	case s.MaxConcurrentDownloads < 1:
		return errors.Errorf("max concurrent downloads must be at least 1, got %d", s.MaxConcurrentDownloads)
	case s.MaxImageSize < 0:
		return errors.Errorf("max image size must not be negative, got %d", s.MaxImageSize)
	}

	switch s.ReportFormat {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return errors.Errorf("unknown report format %q (want text, json or markdown)", s.ReportFormat)
	}
	return nil
}

// RequestHeaders returns the headers sent with every request, User-Agent
// included. UserAgent always wins over a User-Agent entry in Headers,
// whatever its case.
func (s *Settings) RequestHeaders() map[string]string {
	headers := make(map[string]string, len(s.Headers)+1)
	for k, v := range s.Headers {
		if http.CanonicalHeaderKey(k) == "User-Agent" {
			continue
		}
		headers[k] = v
	}
	headers["User-Agent"] = s.UserAgent
	return headers
}
