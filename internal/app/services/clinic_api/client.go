package clinic_api

import (
	"bytes"
	"clinicdesk-service/internal/app/config"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	maxRetryDelay         = 5 * time.Second
	defaultRetryBaseDelay = 200 * time.Millisecond
)

// Client is the shared transport for every clinic API source. Reads are
// retried on transient failures; writes go out exactly once.
type Client struct {
	BaseUrl        string
	HTTPClient     *http.Client
	Limiter        *RateLimiter
	MaxRetries     int
	RetryBaseDelay time.Duration
	Log            *zap.Logger
}

func NewClient(clinicAPIConfig config.ClinicAPI, logger *zap.Logger) *Client {
	return &Client{
		BaseUrl: strings.TrimRight(clinicAPIConfig.BaseUrl, "/"),
		HTTPClient: &http.Client{
			Timeout: time.Duration(clinicAPIConfig.TimeoutInSeconds) * time.Second,
		},
		Limiter:        NewRateLimiter(clinicAPIConfig.RequestsPerSecond, clinicAPIConfig.Burst),
		MaxRetries:     clinicAPIConfig.MaxRetries,
		RetryBaseDelay: time.Duration(clinicAPIConfig.RetryBaseDelayInMilliseconds) * time.Millisecond,
		Log:            logger,
	}
}

// attemptError carries the mapped error of one attempt and whether it may be retried.
type attemptError struct {
	err        error
	retriable  bool
	retryAfter time.Duration
}

// Get reads path into dst, retrying network, 5xx and 429 failures with
// exponential backoff. A Retry-After longer than maxRetryDelay is not waited
// out: the rate limited error is returned at once.
func (c *Client) Get(ctx context.Context, bearer credential.Bearer, path, resource string, dst interface{}) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	policy := &retryAfterBackOff{BackOff: backoff.WithMaxRetries(c.newExponentialBackOff(), uint64(max(c.MaxRetries, 0)))}
	attempt := 0
	operation := func() error {
		attempt++
		result := c.do(ctx, bearer, constvars.MethodGet, path, resource, nil, dst)
		if result == nil {
			return nil
		}
		if !result.retriable || ctx.Err() != nil {
			return backoff.Permanent(result.err)
		}
		policy.retryAfter = result.retryAfter
		return result.err
	}
	notify := func(err error, delay time.Duration) {
		c.Log.Warn("clinic_api.Client.Get retrying",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEndpointKey, path),
			zap.Int(constvars.LoggingAttemptKey, attempt),
			zap.Duration(constvars.LoggingRetryAfterKey, delay),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify)
	if ctxErr := ctx.Err(); err != nil && err == ctxErr {
		return c.mapContextError(ctxErr, resource)
	}
	return err
}

func (c *Client) newExponentialBackOff() *backoff.ExponentialBackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.RetryBaseDelay
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = defaultRetryBaseDelay
	}
	policy.RandomizationFactor = 0
	policy.Multiplier = 2
	policy.MaxInterval = maxRetryDelay
	policy.MaxElapsedTime = 0
	policy.Reset()
	return policy
}

// retryAfterBackOff stretches the next interval up to the Retry-After of the
// last attempt, never past maxRetryDelay.
type retryAfterBackOff struct {
	backoff.BackOff
	retryAfter time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if wait := min(b.retryAfter, maxRetryDelay); wait > next {
		next = wait
	}
	b.retryAfter = 0
	return next
}

// Post sends body once and decodes the response into dst.
func (c *Client) Post(ctx context.Context, bearer credential.Bearer, path, resource string, body interface{}, dst interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	result := c.do(ctx, bearer, constvars.MethodPost, path, resource, payload, dst)
	if result != nil {
		return result.err
	}
	return nil
}

func (c *Client) do(ctx context.Context, bearer credential.Bearer, method, path, resource string, payload []byte, dst interface{}) *attemptError {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	url := c.BaseUrl + path

	if err := c.Limiter.Wait(ctx); err != nil {
		return &attemptError{err: c.mapContextError(err, resource)}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		c.Log.Error("clinic_api.Client.do error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return &attemptError{err: exceptions.ErrCreateHTTPRequest(err)}
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)
	if payload != nil {
		req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	}
	bearer.Apply(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("clinic_api.Client.do error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMethodKey, method),
			zap.String(constvars.LoggingUrlKey, url),
			zap.Error(err),
		)
		return c.mapTransportError(ctx, err, resource)
	}
	defer resp.Body.Close()

	if resp.StatusCode < constvars.StatusOK || resp.StatusCode > 299 {
		return c.mapStatusError(ctx, resp, method, url, resource)
	}

	if dst == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(dst)
	if err != nil {
		c.Log.Error("clinic_api.Client.do error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUrlKey, url),
			zap.Error(err),
		)
		return &attemptError{err: exceptions.ErrClinicAPIDecodeResponse(err, resource)}
	}
	return nil
}

func (c *Client) mapStatusError(ctx context.Context, resp *http.Response, method, url, resource string) *attemptError {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	upstreamErr := errors.New(extractErrorMessage(bodyBytes, resp.Status))

	c.Log.Error("clinic_api.Client.do unexpected status",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMethodKey, method),
		zap.String(constvars.LoggingUrlKey, url),
		zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
		zap.Error(upstreamErr),
	)

	switch {
	case resp.StatusCode == constvars.StatusUnauthorized || resp.StatusCode == constvars.StatusForbidden:
		return &attemptError{err: exceptions.ErrClinicAPIUnauthorized(upstreamErr, resource)}
	case resp.StatusCode == constvars.StatusNotFound:
		return &attemptError{err: exceptions.ErrClinicAPINotFound(upstreamErr, resource)}
	case resp.StatusCode == constvars.StatusTooManyRequests:
		retryAfter := c.Limiter.Backoff(resp)
		return &attemptError{
			err:        exceptions.ErrClinicAPIRateLimited(upstreamErr, resource),
			retriable:  retryAfter <= maxRetryDelay,
			retryAfter: retryAfter,
		}
	case resp.StatusCode >= constvars.StatusInternalServerError:
		return &attemptError{err: exceptions.ErrClinicAPIServerError(upstreamErr, resource), retriable: true}
	default:
		return &attemptError{err: exceptions.ErrClinicAPIRejected(upstreamErr, resource)}
	}
}

func (c *Client) mapTransportError(ctx context.Context, err error, resource string) *attemptError {
	if ctx.Err() != nil {
		return &attemptError{err: c.mapContextError(ctx.Err(), resource)}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &attemptError{err: exceptions.ErrClinicAPITimeout(err, resource), retriable: true}
	}
	return &attemptError{err: exceptions.ErrClinicAPIUnreachable(err, resource), retriable: true}
}

func (c *Client) mapContextError(err error, resource string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return exceptions.ErrClinicAPITimeout(err, resource)
	}
	return exceptions.ErrClinicAPICanceled(err, resource)
}

// extractErrorMessage pulls a human readable message out of an error body,
// falling back to the HTTP status line.
func extractErrorMessage(body []byte, status string) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{constvars.ClinicAPIErrorMessagePath, constvars.ClinicAPIErrorFallbackPath} {
			if message := gjson.GetBytes(body, path); message.Exists() && message.String() != "" {
				return message.String()
			}
		}
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" && len(trimmed) <= 256 {
		return fmt.Sprintf("%s: %s", status, trimmed)
	}
	return status
}
