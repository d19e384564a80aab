package config

// applyDefaults fills in every default named in the external interfaces
// contract, so a config file only needs to name what it wants to override.
func applyDefaults(c *Config) {
	infra := &c.Infrastructure
	if infra.Host == "" {
		infra.Host = "0.0.0.0"
	}
	if infra.Port == 0 {
		infra.Port = 8080
	}
	if infra.OperationMode == "" {
		infra.OperationMode = ModeOnline
	}
	if infra.HTTPTimeoutSeconds == 0 {
		infra.HTTPTimeoutSeconds = 30
	}
	if infra.SearchTimeoutSeconds == 0 {
		infra.SearchTimeoutSeconds = 10
	}
	if infra.DefaultFetchMode == "" {
		infra.DefaultFetchMode = "full"
	}
	if infra.DefaultFetchSurroundingChars == 0 {
		infra.DefaultFetchSurroundingChars = 400
	}
	if infra.CrawlerMinConcurrency == 0 {
		infra.CrawlerMinConcurrency = 5
	}
	if infra.CrawlerMaxConcurrency == 0 {
		infra.CrawlerMaxConcurrency = 20
	}
	if infra.CrawlerMaxSessions == 0 {
		infra.CrawlerMaxSessions = 50
	}
	if infra.CrawlerLockTTLSeconds == 0 {
		infra.CrawlerLockTTLSeconds = 180
	}
	if infra.LogLevel == "" {
		infra.LogLevel = "info"
	}

	for i := range c.Tenants {
		applyTenantDefaults(&c.Tenants[i], c.Search)
	}
}

func applyTenantDefaults(t *TenantConfig, globalSearch SearchOverride) {
	if t.Search.AnalyzerProfile == "" {
		t.Search.AnalyzerProfile = firstNonEmpty(globalSearch.AnalyzerProfile, "default")
	}
	if t.Search.Ranking.BM25K1 == 0 {
		t.Search.Ranking.BM25K1 = firstNonZero(globalSearch.Ranking.BM25K1, 1.2)
	}
	if t.Search.Ranking.BM25B == 0 {
		t.Search.Ranking.BM25B = firstNonZero(globalSearch.Ranking.BM25B, 0.75)
	}
	if t.Search.Snippet.Style == "" {
		t.Search.Snippet.Style = firstNonEmpty(globalSearch.Snippet.Style, "plain")
	}
	if t.Search.Snippet.FragmentCharLimit == 0 {
		t.Search.Snippet.FragmentCharLimit = firstNonZeroInt(globalSearch.Snippet.FragmentCharLimit, 240)
	}
	if t.Search.Snippet.MaxFragments == 0 {
		t.Search.Snippet.MaxFragments = firstNonZeroInt(globalSearch.Snippet.MaxFragments, 2)
	}
	if t.Search.Snippet.SurroundingContextChars == 0 {
		t.Search.Snippet.SurroundingContextChars = firstNonZeroInt(globalSearch.Snippet.SurroundingContextChars, 400)
	}
	if len(t.Search.Boosts) == 0 && len(globalSearch.Boosts) > 0 {
		t.Search.Boosts = globalSearch.Boosts
	}

	if t.SourceType == SourceOnline && t.Online.MaxPages == 0 {
		t.Online.MaxPages = 1000
	}
	if t.SourceType == SourceGit && t.Git.Branch == "" {
		t.Git.Branch = "main"
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonZero(a, b float64) float64 {
	if a != 0 {
		return a
	}
	return b
}

func firstNonZeroInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}
