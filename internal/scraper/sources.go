package scraper

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mselser95/bookie-arb/pkg/types"
)

// SourceConfig describes how to reach one bookmaker. Domains are tried in
// order, moving to the next one after a retryable failure.
type SourceConfig struct {
	Domains     []string          `yaml:"domains"`
	FeedDomains []string          `yaml:"feedDomains"`
	UserAgents  []string          `yaml:"userAgents"`
	Headers     map[string]string `yaml:"headers"`
}

// Sources maps source ids to their configuration.
type Sources map[string]SourceConfig

type sourcesFile struct {
	Sources Sources `yaml:"sources"`
}

//nolint:gochecknoglobals
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0",
}

// DefaultSources returns the built-in endpoints.
func DefaultSources() Sources {
	browser := map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-origin",
	}

	melbetHeaders := maps.Clone(browser)
	melbetHeaders["Origin"] = "https://melbet-india.net"
	melbetHeaders["Referer"] = "https://melbet-india.net/line/football"

	return Sources{
		types.SourceMostbet: {
			Domains:    []string{"https://mostbet-in62.com"},
			UserAgents: defaultUserAgents,
			Headers:    browser,
		},
		types.SourceMelbet: {
			Domains:     []string{"https://melbet-india.net"},
			FeedDomains: []string{"https://ind.1x-bet.mobi"},
			UserAgents:  defaultUserAgents,
			Headers:     melbetHeaders,
		},
	}
}

// LoadSources returns the defaults overlaid with the yaml file at path.
// An empty path returns the defaults. Fields left empty in the file keep
// their default values; headers are merged.
func LoadSources(path string) (Sources, error) {
	sources := DefaultSources()
	if path == "" {
		return sources, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var file sourcesFile
	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	for name, overlay := range file.Sources {
		base := sources[name]
		if len(overlay.Domains) > 0 {
			base.Domains = overlay.Domains
		}
		if len(overlay.FeedDomains) > 0 {
			base.FeedDomains = overlay.FeedDomains
		}
		if len(overlay.UserAgents) > 0 {
			base.UserAgents = overlay.UserAgents
		}
		if len(overlay.Headers) > 0 {
			merged := make(map[string]string, len(base.Headers)+len(overlay.Headers))
			maps.Copy(merged, base.Headers)
			maps.Copy(merged, overlay.Headers)
			base.Headers = merged
		}
		sources[name] = base
	}

	return sources, nil
}

// Validate checks that every source has at least one domain.
func (s Sources) Validate() error {
	for name, cfg := range s {
		if len(cfg.Domains) == 0 {
			return fmt.Errorf("source %s: no domains configured", name)
		}
		if name == types.SourceMelbet && len(cfg.FeedDomains) == 0 {
			return fmt.Errorf("source %s: no feed domains configured", name)
		}
	}

	return nil
}
