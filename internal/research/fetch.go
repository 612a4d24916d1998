// Package research gathers short excerpts from public health sources to give
// the analysis some reference context.  Every lookup is best-effort.
package research

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const (
	// SnippetRunes is how much of each page is kept.
	SnippetRunes = 1500

	// Fallback is returned when no source could be read.
	Fallback = "Tidak ada ringkasan yang dapat diambil saat ini."

	defaultTimeout = 10 * time.Second
	cacheKey       = "research:summary"
)

// DefaultSources are queried in order.
var DefaultSources = []string{
	"https://www.who.int/health-topics/dengue-and-severe-dengue",
	"https://www.cdc.gov/dengue/index.html",
	"https://www.cdc.gov/malaria/index.html",
	"https://www.idai.or.id/",
	"https://www.kemkes.go.id/",
}

// Cache stores the assembled summary between sessions.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Fetcher builds the research summary.  Cache is optional.
type Fetcher struct {
	Sources  []string
	Client   *http.Client
	Timeout  time.Duration
	Cache    Cache
	CacheTTL time.Duration
	Log      *logrus.Logger
}

// NewFetcher returns a Fetcher over DefaultSources.  cache may be nil.
func NewFetcher(cache Cache, ttl time.Duration, log *logrus.Logger) *Fetcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{
		Sources:  DefaultSources,
		Client:   &http.Client{},
		Timeout:  defaultTimeout,
		Cache:    cache,
		CacheTTL: ttl,
		Log:      log,
	}
}

// Summary never fails.  Sources that error or answer with a non-success
// status are skipped; if none succeed the Fallback text is returned.
func (f *Fetcher) Summary(ctx context.Context) string {
	if f.Cache != nil {
		cached, ok, err := f.Cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			f.Log.WithError(err).Warn("research cache read failed")
		case ok:
			return cached
		}
	}

	var b strings.Builder
	for _, src := range f.Sources {
		snippet, err := f.fetch(ctx, src)
		if err != nil {
			f.Log.WithError(err).WithField("source", src).Debug("research source skipped")
			continue
		}
		b.WriteString("Sumber: " + src + "\nCuplikan: " + snippet + "\n\n")
	}
	if b.Len() == 0 {
		return Fallback
	}

	summary := b.String()
	if f.Cache != nil {
		if err := f.Cache.Set(ctx, cacheKey, summary, f.CacheTTL); err != nil {
			f.Log.WithError(err).Warn("research cache write failed")
		}
	}
	return summary
}

func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrapf(err, "build request for %s", url)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "get %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", eris.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, SnippetRunes*utf8.UTFMax))
	if err != nil {
		return "", eris.Wrapf(err, "read %s", url)
	}
	return firstRunes(string(raw), SnippetRunes), nil
}

func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
