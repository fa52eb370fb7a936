// Package rest fetches records from the Discord REST API.
package rest

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
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"discordcore/internal/record"
	"discordcore/internal/resolve"
	"discordcore/pkg/domain"
)

const (
	DefaultBaseURL    = "https://discord.com/api/v10"
	defaultUserAgent  = "DiscordBot (discordcore, 1.0)"
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	maxBodyBytes      = 4 << 20
	maxRetryAfter     = 30 * time.Second
)

// Config holds the connection settings of a Client.
type Config struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond of zero disables client-side rate limiting.
	RequestsPerSecond float64
	Burst             int
	// MaxRetries caps retries of transient failures. Nil uses the default;
	// zero disables retries.
	MaxRetries *uint64
}

// Client implements resolve.Fetcher over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	token      string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries uint64
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
	// roleLists coalesces concurrent role-list requests per guild.
	roleLists singleflight.Group
}

var _ resolve.Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBackOff replaces the delay policy between retries.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) {
		if newBackOff != nil {
			c.newBackOff = newBackOff
		}
	}
}

// New creates a Client. An empty BaseURL targets the public API.
func New(cfg Config, opts ...Option) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxRetries := uint64(defaultMaxRetries)
	if cfg.MaxRetries != nil {
		maxRetries = *cfg.MaxRetries
	}
	limit, burst := rate.Inf, cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		token:      cfg.Token,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: maxRetries,
		newBackOff: defaultBackOff,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Fetch retrieves one record. Emojis and roles need the guild as parent.
func (c *Client) Fetch(ctx context.Context, kind domain.Kind, id, parent domain.Snowflake) (record.Envelope, error) {
	switch kind {
	case domain.KindUser:
		body, err := c.get(ctx, "users", id.String())
		if err != nil {
			return record.Envelope{}, err
		}
		rec, err := record.DecodeUser(body)
		return envelope(rec, err, 0)
	case domain.KindGuild:
		body, err := c.get(ctx, "guilds", id.String())
		if err != nil {
			return record.Envelope{}, err
		}
		rec, err := record.DecodeGuild(body)
		return envelope(rec, err, 0)
	case domain.KindEmoji:
		if parent.IsZero() {
			return record.Envelope{}, resolve.NewFetchError(resolve.CategoryInternal, "emoji lookup requires a guild", nil)
		}
		body, err := c.get(ctx, "guilds", parent.String(), "emojis", id.String())
		if err != nil {
			return record.Envelope{}, err
		}
		rec, err := record.DecodeEmoji(body)
		return envelope(rec, err, parent)
	case domain.KindRole:
		if parent.IsZero() {
			return record.Envelope{}, resolve.NewFetchError(resolve.CategoryInternal, "role lookup requires a guild", nil)
		}
		return c.fetchRole(ctx, id, parent)
	}
	return record.Envelope{}, resolve.NewFetchError(resolve.CategoryInternal, fmt.Sprintf("unsupported kind %q", kind), nil)
}

// fetchRole lists the guild roles and picks id out of them; the API has no
// single-role route. Lookups of several roles of one guild share a single
// list request.
func (c *Client) fetchRole(ctx context.Context, id, guild domain.Snowflake) (record.Envelope, error) {
	body, err := c.roleList(ctx, guild)
	if err != nil {
		return record.Envelope{}, err
	}
	roles, err := record.DecodeRoles(body)
	if err != nil {
		return record.Envelope{}, resolve.NewFetchError(resolve.CategoryBadData, "decode roles", err)
	}
	for _, role := range roles {
		if got, _ := role.Identifier(); got == id {
			return record.Wrap(role, guild), nil
		}
	}
	return record.Envelope{}, resolve.NewFetchError(resolve.CategoryNotFound, fmt.Sprintf("role %s not in guild %s", id, guild), nil)
}

func (c *Client) roleList(ctx context.Context, guild domain.Snowflake) ([]byte, error) {
	// The list outlives a cancelled caller that other lookups are waiting on.
	ch := c.roleLists.DoChan(guild.String(), func() (any, error) {
		shared := context.WithoutCancel(ctx)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			shared, cancel = context.WithDeadline(shared, deadline)
			defer cancel()
		}
		return c.get(shared, "guilds", guild.String(), "roles")
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, transportError(ctx, ctx.Err())
	}
}

func envelope(rec record.Record, err error, parent domain.Snowflake) (record.Envelope, error) {
	if err != nil {
		return record.Envelope{}, resolve.NewFetchError(resolve.CategoryBadData, "decode body", err)
	}
	return record.Wrap(rec, parent), nil
}

// get issues a rate-limited GET and retries transient failures.
func (c *Client) get(ctx context.Context, segments ...string) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(segments...).String()

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				// the limiter refuses waits that would outlive the deadline
				err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
			}
			return backoff.Permanent(transportError(ctx, err))
		}
		data, err := c.do(ctx, endpoint)
		if err != nil {
			var fe *resolve.FetchError
			if errors.As(err, &fe) && fe.Category.Retryable() {
				return err
			}
			return backoff.Permanent(err)
		}
		body = data
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "retrying request",
			"url", endpoint,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		var fe *resolve.FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, transportError(ctx, err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, resolve.NewFetchError(resolve.CategoryInternal, "build request", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(ctx, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, resolve.NewFetchError(resolve.CategoryNotFound, "status 404", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		if err := waitRetryAfter(ctx, resp.Header.Get("Retry-After")); err != nil {
			return nil, transportError(ctx, err)
		}
		return nil, resolve.NewFetchError(resolve.CategoryRateLimited, "status 429", nil)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, resolve.NewFetchError(resolve.CategoryUnavailable, fmt.Sprintf("status %d", resp.StatusCode), nil)
	default:
		return nil, resolve.NewFetchError(resolve.CategoryInternal, fmt.Sprintf("status %d: %s", resp.StatusCode, snippet(body)), nil)
	}
}

// waitRetryAfter honours the server's Retry-After hint before the next attempt.
func waitRetryAfter(ctx context.Context, header string) error {
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil || secs <= 0 {
		return nil
	}
	wait := min(time.Duration(secs*float64(time.Second)), maxRetryAfter)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func transportError(ctx context.Context, err error) *resolve.FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return resolve.NewFetchError(resolve.CategoryTimeout, "request timed out", err)
	case ctx.Err() != nil:
		return resolve.NewFetchError(resolve.CategoryInternal, "request cancelled", err)
	default:
		return resolve.NewFetchError(resolve.CategoryUnavailable, "request failed", err)
	}
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
