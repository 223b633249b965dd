// Package logos downloads project logos next to the landscape document.
package logos

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"landscape/internal/landscape/emit"
	"landscape/internal/landscape/models"
	dErrors "landscape/pkg/domain-errors"
)

const (
	defaultConcurrency = 4
	defaultTimeout     = 10 * time.Second
	maxLogoBytes       = 5 << 20
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Metrics is the subset of run metrics the fetcher reports.
type Metrics interface {
	IncrementLogoDownload(ok bool)
}

// Fetcher downloads logos into a directory. A failed download is never
// fatal: the project falls back to the placeholder logo.
type Fetcher struct {
	dir         string
	client      *http.Client
	concurrency int
	logger      *slog.Logger
	metrics     Metrics
}

type Option func(*Fetcher)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

func New(dir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		dir: dir,
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		concurrency: defaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the logo of every entry that has one and returns the file
// name (relative to the logo directory) to use for each project. Projects
// whose download failed map to the placeholder. Only an unusable logo
// directory is an error.
func (f *Fetcher) Fetch(ctx context.Context, entries []models.Entry) (map[models.ProjectID]string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWrite, fmt.Sprintf("create logo directory %s", f.dir))
	}

	var (
		mu    sync.Mutex
		logos = make(map[models.ProjectID]string)
	)
	bases := baseNames(entries)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for _, entry := range entries {
		if entry.LogoURL == "" {
			continue
		}
		entry := entry
		g.Go(func() error {
			name, err := f.download(gctx, bases[entry.ID], entry.LogoURL)
			if f.metrics != nil {
				f.metrics.IncrementLogoDownload(err == nil)
			}
			if err != nil {
				f.logger.WarnContext(gctx, "logo download failed, using placeholder",
					"project_id", entry.ID,
					"url", entry.LogoURL,
					"error", err,
				)
				name = emit.PlaceholderLogo
			}
			mu.Lock()
			logos[entry.ID] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWrite, "logo download interrupted before output was written")
	}
	return logos, nil
}

func (f *Fetcher) download(ctx context.Context, base, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("unsupported logo url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxLogoBytes {
		return "", fmt.Errorf("logo larger than %d bytes", maxLogoBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty logo")
	}

	name := base + extension(u, resp.Header.Get("Content-Type"))
	if err := emit.WriteFileAtomic(filepath.Join(f.dir, name), data); err != nil {
		return "", err
	}
	return name, nil
}

// sanitize turns an identifier into a safe file name stem.
func sanitize(id models.ProjectID) string {
	base := strings.Trim(unsafeChars.ReplaceAllString(string(id), "_"), "._")
	if base == "" {
		base = "project"
	}
	return base
}

// baseNames assigns each project with a logo a file name stem. Stems that
// several identifiers sanitize to (compared case-insensitively) get a short
// hash of the identifier appended, so no download overwrites another.
func baseNames(entries []models.Entry) map[models.ProjectID]string {
	owners := make(map[string]int)
	for _, entry := range entries {
		if entry.LogoURL != "" {
			owners[strings.ToLower(sanitize(entry.ID))]++
		}
	}
	bases := make(map[models.ProjectID]string, len(entries))
	for _, entry := range entries {
		if entry.LogoURL == "" {
			continue
		}
		base := sanitize(entry.ID)
		if owners[strings.ToLower(base)] > 1 {
			sum := sha256.Sum256([]byte(entry.ID))
			base += "-" + hex.EncodeToString(sum[:4])
		}
		bases[entry.ID] = base
	}
	return bases
}

// extension prefers the URL's extension and falls back to the content type.
func extension(u *url.URL, contentType string) string {
	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && len(ext) <= 5 && !unsafeChars.MatchString(ext[1:]) {
		return ext
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".png"
	}
	switch mediaType {
	case "image/svg+xml":
		return ".svg"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		sort.Strings(exts)
		return exts[0]
	}
	return ".png"
}
