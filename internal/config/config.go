// Package config loads the declarative YAML configuration file described
// in the external interfaces contract: infrastructure settings, the tenant
// list, and an optional search override. Decoding is strict — any field
// not recognized at any level is a load error — mirroring the teacher's
// preference for failing fast on operator typos rather than silently
// ignoring them.
package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// codenameRE enforces tenant codenames: lowercase letters, digits, and
// hyphens, 2-64 characters, starting with a letter.
var codenameRE = regexp.MustCompile(`^[a-z][a-z0-9-]{1,63}$`)

// OperationMode gates whether state-mutating endpoints are enabled.
type OperationMode string

const (
	ModeOnline  OperationMode = "online"
	ModeOffline OperationMode = "offline"
)

// SourceType names the kind of sync runtime a tenant uses.
type SourceType string

const (
	SourceOnline     SourceType = "online"
	SourceGit        SourceType = "git"
	SourceFilesystem SourceType = "filesystem"
)

// Infrastructure is the top-level "infrastructure" config block.
type Infrastructure struct {
	Host                        string        `yaml:"host"`
	Port                        int           `yaml:"port"`
	OperationMode               OperationMode `yaml:"operation_mode"`
	HTTPTimeoutSeconds          int           `yaml:"http_timeout_s"`
	SearchTimeoutSeconds        int           `yaml:"search_timeout_s"`
	SearchIncludeStats          bool          `yaml:"search_include_stats"`
	DefaultFetchMode            string        `yaml:"default_fetch_mode"`
	DefaultFetchSurroundingChars int          `yaml:"default_fetch_surrounding_chars"`
	CrawlerMinConcurrency       int           `yaml:"crawler_min_concurrency"`
	CrawlerMaxConcurrency       int           `yaml:"crawler_max_concurrency"`
	CrawlerMaxSessions          int           `yaml:"crawler_max_sessions"`
	CrawlerLockTTLSeconds       int           `yaml:"crawler_lock_ttl_seconds"`
	AuditTimeoutSeconds         int           `yaml:"audit_timeout_s"`
	LogLevel                    string        `yaml:"log_level"`
	LogProfiles                 []string      `yaml:"log_profiles"`
}

// OnlineSource holds the crawler-specific fields for a source_type=online
// tenant.
type OnlineSource struct {
	SitemapURL        string   `yaml:"sitemap_url,omitempty"`
	EntryURL          string   `yaml:"entry_url,omitempty"`
	WhitelistPrefixes []string `yaml:"whitelist_prefixes,omitempty"`
	BlacklistPrefixes []string `yaml:"blacklist_prefixes,omitempty"`
	UseCrawler        bool     `yaml:"use_crawler,omitempty"`
	MaxPages          int      `yaml:"max_pages,omitempty"`
}

// GitSource holds the fields for a source_type=git tenant.
type GitSource struct {
	RepoURL     string   `yaml:"repo_url,omitempty"`
	Branch      string   `yaml:"branch,omitempty"`
	Subpaths    []string `yaml:"subpaths,omitempty"`
	StripPrefix string   `yaml:"strip_prefix,omitempty"`
	AuthEnvVar  string   `yaml:"auth_env_var,omitempty"`
}

// RankingOverride is the "search.ranking" block.
type RankingOverride struct {
	BM25K1            float64 `yaml:"bm25_k1,omitempty"`
	BM25B             float64 `yaml:"bm25_b,omitempty"`
	EnablePhraseBonus bool    `yaml:"enable_phrase_bonus,omitempty"`
	EnableFuzzy       bool    `yaml:"enable_fuzzy,omitempty"`
}

// BoostsOverride is the "search.boosts" block, keyed by field name.
type BoostsOverride map[string]float64

// SnippetOverride is the "search.snippet" block.
type SnippetOverride struct {
	Style                   string `yaml:"style,omitempty"`
	FragmentCharLimit       int    `yaml:"fragment_char_limit,omitempty"`
	MaxFragments            int    `yaml:"max_fragments,omitempty"`
	SurroundingContextChars int    `yaml:"surrounding_context_chars,omitempty"`
}

// SearchOverride is the optional per-tenant (or global) "search" block.
type SearchOverride struct {
	Ranking         RankingOverride `yaml:"ranking,omitempty"`
	Boosts          BoostsOverride  `yaml:"boosts,omitempty"`
	Snippet         SnippetOverride `yaml:"snippet,omitempty"`
	AnalyzerProfile string          `yaml:"analyzer_profile,omitempty"`
}

// TenantConfig is one entry of the top-level "tenants" array.
type TenantConfig struct {
	Codename        string         `yaml:"codename"`
	DocsName        string         `yaml:"docs_name"`
	Description     string         `yaml:"description,omitempty"`
	SourceType      SourceType     `yaml:"source_type"`
	DocsRootDir     string         `yaml:"docs_root_dir"`
	RefreshSchedule string         `yaml:"refresh_schedule,omitempty"`
	TestQueries     []string       `yaml:"test_queries,omitempty"`
	Search          SearchOverride `yaml:"search,omitempty"`

	Online OnlineSource `yaml:"online,omitempty"`
	Git    GitSource    `yaml:"git,omitempty"`
}

// Config is the whole declarative configuration file.
type Config struct {
	Infrastructure Infrastructure `yaml:"infrastructure"`
	Tenants        []TenantConfig `yaml:"tenants"`
	Search         SearchOverride `yaml:"search,omitempty"`
}

// Load reads and strictly decodes the YAML file at path, then fills in
// defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks structural invariants Load can't express through the
// decoder alone: unique codenames, required per-source-type fields.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Tenants))
	for _, t := range c.Tenants {
		if t.Codename == "" {
			return fmt.Errorf("tenant with empty codename")
		}
		if !codenameRE.MatchString(t.Codename) {
			return fmt.Errorf("tenant %q: codename must match %s", t.Codename, codenameRE.String())
		}
		if seen[t.Codename] {
			return fmt.Errorf("duplicate tenant codename %q", t.Codename)
		}
		seen[t.Codename] = true

		if t.DocsRootDir == "" {
			return fmt.Errorf("tenant %q: docs_root_dir is required", t.Codename)
		}
		switch t.SourceType {
		case SourceOnline:
			if t.Online.SitemapURL == "" && t.Online.EntryURL == "" {
				return fmt.Errorf("tenant %q: online source requires sitemap_url or entry_url", t.Codename)
			}
		case SourceGit:
			if t.Git.RepoURL == "" {
				return fmt.Errorf("tenant %q: git source requires repo_url", t.Codename)
			}
		case SourceFilesystem:
			// docs_root_dir alone is sufficient.
		default:
			return fmt.Errorf("tenant %q: unknown source_type %q", t.Codename, t.SourceType)
		}
	}

	switch c.Infrastructure.OperationMode {
	case ModeOnline, ModeOffline, "":
	default:
		return fmt.Errorf("unknown operation_mode %q", c.Infrastructure.OperationMode)
	}
	if c.Infrastructure.CrawlerLockTTLSeconds != 0 && c.Infrastructure.CrawlerLockTTLSeconds < 60 {
		return fmt.Errorf("infrastructure.crawler_lock_ttl_seconds must be >= 60")
	}
	if c.Infrastructure.AuditTimeoutSeconds != 0 && c.Infrastructure.AuditTimeoutSeconds < 1 {
		return fmt.Errorf("infrastructure.audit_timeout_s must be >= 1")
	}
	return nil
}
