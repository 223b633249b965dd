// Package registry reads project records from the project registry API, or
// from a local export of it.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"landscape/internal/landscape/models"
	dErrors "landscape/pkg/domain-errors"
)

const (
	defaultPageSize    = 20
	defaultInitial     = 500 * time.Millisecond
	defaultMaxInterval = 5 * time.Second
	defaultTimeout     = 30 * time.Second
	defaultMaxPages    = 1000

	maxBodyBytes = 32 << 20
	userAgent    = "landscape-generator"
)

// Config controls how the client talks to the registry. BaseURL is required;
// other zero values take the defaults above, except MaxRetries where zero
// disables retries.
type Config struct {
	BaseURL        string
	PageSize       int
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration
	// Concurrency bounds parallel page fetches when the registry advertises
	// its last page. 1 fetches sequentially.
	Concurrency int
	// MaxPages guards against pagination that never ends.
	MaxPages int
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitial
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxInterval
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	return c
}

// Metrics is the subset of run metrics the client reports.
type Metrics interface {
	ObserveRegistryRequest(outcome string, start time.Time)
	IncrementRegistryRetries()
}

// Client fetches every project from a paginated registry endpoint.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, dErrors.Newf(dErrors.CodeConfig, "registry url %q must be an absolute http(s) URL", cfg.BaseURL)
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
		tracer: otel.Tracer("landscape/registry"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// page is one decoded registry response.
type page struct {
	number  int
	records []models.RegistryRecord
	next    string // absolute URL of rel="next", if any
	last    int    // page number of rel="last", 0 if not advertised
}

// FetchAll returns every record the registry lists, in registry order.
func (c *Client) FetchAll(ctx context.Context) ([]models.RegistryRecord, error) {
	ctx, span := c.tracer.Start(ctx, "registry.FetchAll", trace.WithAttributes(
		attribute.String("registry.url", c.cfg.BaseURL),
		attribute.Int("registry.page_size", c.cfg.PageSize),
	))
	defer span.End()

	records, pages, err := c.fetchAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("registry.pages", pages), attribute.Int("registry.records", len(records)))
	c.logger.InfoContext(ctx, "registry fetch complete",
		"url", c.cfg.BaseURL,
		"pages", pages,
		"records", len(records),
	)
	return records, nil
}

func (c *Client) fetchAll(ctx context.Context) ([]models.RegistryRecord, int, error) {
	first, err := c.fetchPage(ctx, c.pageURL(1), 1)
	if err != nil {
		return nil, 0, err
	}
	records := first.records
	if len(first.records) == 0 {
		return records, 1, nil
	}

	if first.last > 1 && c.cfg.Concurrency > 1 {
		if first.last > c.cfg.MaxPages {
			return nil, 0, c.tooManyPages(first.last)
		}
		rest, err := c.fetchRange(ctx, 2, first.last)
		if err != nil {
			return nil, 0, err
		}
		for _, p := range rest {
			records = append(records, p.records...)
		}
		return records, first.last, nil
	}

	current := first
	for current.next != "" {
		n := current.number + 1
		if n > c.cfg.MaxPages {
			return nil, 0, c.tooManyPages(n)
		}
		current, err = c.fetchPage(ctx, current.next, n)
		if err != nil {
			return nil, 0, err
		}
		if len(current.records) == 0 {
			break
		}
		records = append(records, current.records...)
	}
	return records, current.number, nil
}

// fetchRange fetches pages [from, to] with bounded parallelism and returns
// them in page order.
func (c *Client) fetchRange(ctx context.Context, from, to int) ([]*page, error) {
	pages := make([]*page, to-from+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for n := from; n <= to; n++ {
		n := n
		g.Go(func() error {
			p, err := c.fetchPage(gctx, c.pageURL(n), n)
			if err != nil {
				return err
			}
			pages[n-from] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func (c *Client) tooManyPages(n int) error {
	fe := NewFetchError(ErrorPagination, c.cfg.BaseURL, 0,
		fmt.Sprintf("pagination exceeds %d pages (reached page %d)", c.cfg.MaxPages, n), nil)
	return dErrors.Wrap(fe, dErrors.CodeRegistryResponse, "registry pagination did not terminate")
}

// pageURL builds the URL of page n from the configured base URL, keeping its
// existing query parameters.
func (c *Client) pageURL(n int) string {
	u, _ := url.Parse(c.cfg.BaseURL)
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	q.Set("pagesize", strconv.Itoa(c.cfg.PageSize))
	u.RawQuery = q.Encode()
	return u.String()
}

// fetchPage requests one page, retrying transient failures with exponential
// backoff. The returned error is already in the domain taxonomy.
func (c *Client) fetchPage(ctx context.Context, pageURL string, n int) (*page, error) {
	ctx, span := c.tracer.Start(ctx, "registry.page", trace.WithAttributes(attribute.Int("registry.page", n)))
	defer span.End()

	attempts := 0
	operation := func() (*page, error) {
		attempts++
		p, err := c.get(ctx, pageURL)
		if err == nil {
			p.number = n
			return p, nil
		}
		if ctx.Err() != nil || !IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		if c.metrics != nil {
			c.metrics.IncrementRegistryRetries()
		}
		c.logger.WarnContext(ctx, "registry request failed, retrying",
			"url", pageURL,
			"attempt", attempts,
			"wait", wait,
			"error", err,
		)
	}

	p, err := backoff.RetryNotifyWithData(operation, policy, notify)
	span.SetAttributes(attribute.Int("registry.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, dErrors.Wrap(ctxErr, dErrors.CodeRegistryUnavailable,
				fmt.Sprintf("GET %s interrupted after %d attempt(s)", pageURL, attempts))
		}
		return nil, toDomainError(err, pageURL, attempts)
	}
	return p, nil
}

// get performs a single request and categorizes any failure.
func (c *Client) get(ctx context.Context, pageURL string) (p *page, err error) {
	start := time.Now()
	outcome := ""
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveRegistryRequest(outcome, start)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		outcome = string(ErrorRejected)
		return nil, NewFetchError(ErrorRejected, pageURL, 0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		category := ErrorNetwork
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			category = ErrorTimeout
		}
		outcome = string(category)
		return nil, NewFetchError(category, pageURL, 0, "request failed", err)
	}
	defer resp.Body.Close()
	outcome = strconv.Itoa(resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		outcome = string(ErrorNetwork)
		return nil, NewFetchError(ErrorNetwork, pageURL, resp.StatusCode, "read body", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, NewFetchError(ErrorOutage, pageURL, resp.StatusCode, "server error", nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, NewFetchError(ErrorRejected, pageURL, resp.StatusCode,
			"unexpected status: "+snippet(body), nil)
	}

	records, err := decodePage(body)
	if err != nil {
		return nil, NewFetchError(ErrorBadData, pageURL, resp.StatusCode, "body is not a JSON array of projects", err)
	}

	p = &page{records: records}
	links := parseLinkHeader(resp.Header.Values("Link"))
	if next, ok := links["next"]; ok {
		p.next = resolve(resp.Request.URL, next)
	}
	if last, ok := links["last"]; ok {
		p.last = pageNumber(resolve(resp.Request.URL, last))
	}
	return p, nil
}

// parseLinkHeader extracts rel -> target pairs from RFC 8288 Link headers,
// e.g. `<https://host/api?page=2>; rel="next", <...>; rel="last"`.
func parseLinkHeader(values []string) map[string]string {
	links := make(map[string]string)
	for _, value := range values {
		for _, link := range strings.Split(value, ",") {
			parts := strings.Split(link, ";")
			target := strings.TrimSpace(parts[0])
			if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
				continue
			}
			target = strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
			for _, param := range parts[1:] {
				key, val, ok := strings.Cut(strings.TrimSpace(param), "=")
				if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
					continue
				}
				for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(val), `"`)) {
					links[strings.ToLower(rel)] = target
				}
			}
		}
	}
	return links
}

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

func pageNumber(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "<empty body>"
	}
	return s
}
