package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

//go:generate mockgen -source=http_client.go -destination=mock_http_client.go -package=clients

const (
	defaultTimeout   = 15 * time.Second
	defaultRetries   = 2
	defaultBackoff   = 200 * time.Millisecond
	defaultUserAgent = "memberhub/1.0"
)

var (
	ErrFailedCloseResponseBody = errors.New("failed close response body")

	errServerStatus = errors.New("upstream server error")
)

type HTTPClientI interface {
	Do(req *http.Request) (*http.Response, error)
	Get(ctx context.Context, url string, headers http.Header) (statusCode int, respBody []byte, respHeaders http.Header, err error)
}

type Option func(*HTTPClient)

func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.client.Timeout = d }
}

// WithRetries sets how many times Get is repeated after the first attempt.
func WithRetries(retries uint64, backoff time.Duration) Option {
	return func(h *HTTPClient) {
		h.retries = retries
		h.backoff = backoff
	}
}

func WithUserAgent(ua string) Option {
	return func(h *HTTPClient) { h.userAgent = ua }
}

// HTTPClient talks to the WeChat APIs. Do sends a request exactly once, Get
// retries transport failures and 5xx answers with exponential backoff.
type HTTPClient struct {
	client    *http.Client
	userAgent string
	retries   uint64
	backoff   time.Duration
}

func NewHTTPClient(opts ...Option) *HTTPClient {
	h := &HTTPClient{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		retries:   defaultRetries,
		backoff:   defaultBackoff,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	return h.client.Do(req)
}

// Get returns the last response when every attempt ends in a 5xx, so callers
// still see the upstream status.
func (h *HTTPClient) Get(ctx context.Context, url string, headers http.Header) (statusCode int, respBody []byte, respHeaders http.Header, err error) {
	backoff := retry.WithMaxRetries(h.retries, retry.NewExponential(h.backoff))
	attempt := 0

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var getErr error
		statusCode, respBody, respHeaders, getErr = h.get(ctx, url, headers)
		switch {
		case getErr != nil && ctx.Err() != nil:
			return getErr
		case getErr != nil:
			zap.L().Debug("http get failed, retrying", zap.Int("attempt", attempt), zap.Error(getErr))
			return retry.RetryableError(getErr)
		case statusCode >= http.StatusInternalServerError:
			zap.L().Debug("http get got server error, retrying", zap.Int("attempt", attempt), zap.Int("status", statusCode))
			return retry.RetryableError(fmt.Errorf("%w: %d", errServerStatus, statusCode))
		}
		return nil
	})
	if errors.Is(err, errServerStatus) {
		return statusCode, respBody, respHeaders, nil
	}
	if err != nil {
		return 0, nil, nil, err
	}
	return statusCode, respBody, respHeaders, nil
}

func (h *HTTPClient) get(ctx context.Context, url string, headers http.Header) (statusCode int, respBody []byte, respHeaders http.Header, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return
	}
	if headers != nil {
		req.Header = headers.Clone()
	}

	resp, err := h.Do(req)
	if err != nil {
		return
	}
	defer func() {
		if e := resp.Body.Close(); e != nil {
			err = errors.Join(err, ErrFailedCloseResponseBody)
		}
	}()

	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	statusCode = resp.StatusCode
	respHeaders = resp.Header
	return
}
