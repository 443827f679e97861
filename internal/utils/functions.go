package utils

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func GetRandomUserAgent() string {
	return userAgents[time.Now().UnixNano()%int64(len(userAgents))]
}

// DeriveOutputPath returns the last path segment of link, or
// DefaultOutputName when the URL has none.
func DeriveOutputPath(link string) string {
	parsedURL, err := url.Parse(link)
	if err != nil {
		return DefaultOutputName
	}
	name := path.Base(parsedURL.Path)
	if name == "" || name == "." || name == "/" {
		return DefaultOutputName
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = filepath.Base(filepath.Clean(name))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return DefaultOutputName
	}
	return name
}

func RenewOutputPath(outputPath string) string {
	dir := filepath.Dir(outputPath)
	base := filepath.Base(outputPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	index := 1
	for {
		outputPath = filepath.Join(dir, fmt.Sprintf("%s-(%d)%s", name, index, ext))
		// any stat failure ends the search; creating the file reports the real error
		if _, err := os.Stat(outputPath); err != nil {
			return outputPath
		}
		index++
	}
}

// ResolveOutputPath picks the destination for link. An explicit path is used
// as-is (it will be truncated); a derived one is renewed if it already exists.
func ResolveOutputPath(link, explicit string) string {
	if explicit != "" {
		return explicit
	}
	derived := DeriveOutputPath(link)
	if _, err := os.Stat(derived); err == nil {
		return RenewOutputPath(derived)
	}
	return derived
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// SplitProxyAuth moves credentials embedded in the proxy URL into cfg unless
// they were given explicitly.
func SplitProxyAuth(cfg *HTTPClientConfig) {
	if cfg.ProxyURL == "" {
		return
	}
	parsedProxy, err := url.Parse(cfg.ProxyURL)
	if err != nil || parsedProxy.User == nil {
		return
	}
	if cfg.ProxyUsername == "" {
		cfg.ProxyUsername = parsedProxy.User.Username()
		if password, set := parsedProxy.User.Password(); set {
			cfg.ProxyPassword = password
		}
	}
	parsedProxy.User = nil
	cfg.ProxyURL = parsedProxy.String()
}

func ValidateRequest(req DownloadRequest) error {
	parsedURL, err := url.Parse(req.URL)
	if err != nil || req.URL == "" {
		return &ConfigurationError{Field: "url", Reason: fmt.Sprintf("invalid URL %q", req.URL)}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ConfigurationError{Field: "url", Reason: fmt.Sprintf("unsupported scheme %q", parsedURL.Scheme)}
	}
	if req.Jobs < 1 {
		return &ConfigurationError{Field: "jobs", Reason: fmt.Sprintf("must be at least 1, got %d", req.Jobs)}
	}
	if req.OutputPath == "" {
		return &ConfigurationError{Field: "output", Reason: "output path is empty"}
	}
	return nil
}

// includes logger
func ReadDownloadList(filePath string, defaultJobs int) ([]DownloadEntry, error) {
	log := GetLogger("config")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}
	var entries []DownloadEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, &ConfigurationError{Field: "batch", Reason: fmt.Sprintf("error parsing YAML file: %v", err)}
	}
	for i := range entries {
		if entries[i].URL == "" {
			return nil, &ConfigurationError{Field: "batch", Reason: fmt.Sprintf("missing link for entry %d", i+1)}
		}
		if entries[i].Jobs < 0 {
			return nil, &ConfigurationError{Field: "batch", Reason: fmt.Sprintf("negative jobs for entry %d", i+1)}
		}
		if entries[i].Jobs == 0 {
			entries[i].Jobs = defaultJobs
		}
	}
	log.Debug().Int("count", len(entries)).Msg("Entries loaded from YAML")
	return entries, nil
}
