// Package restapi is the HTTP gateway to the employee REST backend.
package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/services/directory"
)

// Error message constants for consistent error handling
const (
	errBaseURLRequired = "API base URL is required"
	errInvalidBaseURL  = "invalid API base URL %q: %w"
	errBuildRequest    = "build request: %w"
	errDoRequest       = "%s %s: %w"
	errDecodeEnvelope  = "decode %s response: %w"
)

// maxErrorExcerpt bounds how much of an unexpected body ends up in an error.
const maxErrorExcerpt = 256

// Client talks to the employee backend over HTTP.
type Client struct {
	base     *url.URL
	http     *http.Client
	timeout  time.Duration
	retryCfg retry.Config
	validate *validator.Validate
	logger   log.Logger
}

// Options configures a Client.
type Options struct {
	// required parameters
	BaseURL string
	// Timeout bounds each attempt; defaults to 10 seconds.
	Timeout time.Duration
	// Attempts is the total number of tries per call; defaults to 3.
	Attempts int
	// InitialBackoff is the first retry delay, doubled each retry; defaults to 200ms.
	InitialBackoff time.Duration
	Logger         log.Logger
	// options to inject for testing purposes
	HTTPClient *http.Client
}

// NewClient creates a Client. The default HTTP client carries a cookie jar
// scoped with the public suffix list, since the demo backend rate limits by
// cookie.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New(errBaseURLRequired)
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf(errInvalidBaseURL, opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf(errInvalidBaseURL, opts.BaseURL, errors.New("need an absolute http(s) URL"))
	}
	if base.Path == "" || base.Path[len(base.Path)-1] != '/' {
		base.Path += "/"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.HTTPClient == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		opts.HTTPClient = &http.Client{Jar: jar}
	}

	return &Client{
		base:    base,
		http:    opts.HTTPClient,
		timeout: opts.Timeout,
		retryCfg: retry.Config{
			MaxAttempts:   opts.Attempts,
			InitialDelay:  opts.InitialBackoff,
			BackoffPolicy: retry.BackoffExponential,
			IsRetryable:   retryable,
		},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   opts.Logger,
	}, nil
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// ListEmployees fetches GET {base}employees. Records that fail validation are
// skipped.
func (c *Client) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	env, err := c.call(ctx, "list", http.MethodGet, c.endpoint("employees", nil))
	if err != nil {
		return nil, err
	}

	var dtos []employeeDTO
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &dtos); err != nil {
			return nil, fmt.Errorf(errDecodeEnvelope, "list", err)
		}
	}

	out := make([]domain.Employee, 0, len(dtos))
	for _, dto := range dtos {
		if err := c.validate.Struct(dto); err != nil {
			c.logger.Debug(map[string]any{"id": int(dto.ID), "error": err.Error()}, "skip_invalid_record")
			continue
		}
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// UpdateSalary calls PUT {base}update/{id}?employee_salary={salary} and
// returns the salary echoed by the backend, or the requested one when the
// backend does not echo it. The update sets an absolute value, so retrying it
// is safe.
func (c *Client) UpdateSalary(ctx context.Context, id int, salary int) (int, error) {
	q := url.Values{"employee_salary": {strconv.Itoa(salary)}}
	env, err := c.call(ctx, "update", http.MethodPut, c.endpoint("update/"+strconv.Itoa(id), q))
	if err != nil {
		return 0, err
	}

	var data salaryDTO
	if len(env.Data) > 0 && env.Data[0] == '{' {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return 0, fmt.Errorf(errDecodeEnvelope, "update", err)
		}
	}
	if data.Salary == nil {
		return salary, nil
	}
	return int(*data.Salary), nil
}

func (c *Client) endpoint(path string, q url.Values) *url.URL {
	u := c.base.ResolveReference(&url.URL{Path: path})
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u
}

// call performs one logical request with per-attempt timeout and retry and
// returns the decoded envelope of a successful response.
func (c *Client) call(ctx context.Context, op, method string, u *url.URL) (*envelope, error) {
	requestID := uuid.NewString()
	r := retry.New[*envelope](c.retryCfg)
	t := timeout.New[*envelope](timeout.Config{DefaultTimeout: c.timeout})

	attempt := 0
	var last error
	env, err := r.Do(ctx, func(ctx context.Context) (*envelope, error) {
		attempt++
		env, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (*envelope, error) {
			return c.do(ctx, op, method, u, requestID, attempt)
		})
		last = err
		return env, err
	})
	if err != nil {
		// surface the last attempt's error so callers can match *APIError
		if last != nil && ctx.Err() == nil {
			err = last
		}
		c.logger.Warn(map[string]any{
			"op":         op,
			"request_id": requestID,
			"attempts":   attempt,
			"error":      err,
		}, "backend_call_failed")
		return nil, err
	}
	return env, nil
}

// retryable reports whether another attempt may succeed. The backend's
// definitive answers (4xx other than 429, a "failure" envelope) are final;
// transport, timeout and decode errors are retried.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

func (c *Client) do(ctx context.Context, op, method string, u *url.URL, requestID string, attempt int) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf(errBuildRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errDoRequest, method, u.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(errDoRequest, method, u.Path, err)
	}
	c.logger.Debug(map[string]any{
		"op":          op,
		"method":      method,
		"path":        u.Path,
		"status":      resp.StatusCode,
		"request_id":  requestID,
		"attempt":     attempt,
		"duration_ms": time.Since(start).Milliseconds(),
	}, "backend_call")

	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
	if op == "update" {
		apiErr.Err = domain.ErrUpdateRejected
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr.Message = excerpt(body)
		return nil, apiErr
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf(errDecodeEnvelope, op, err)
	}
	if env.Status != statusSuccess {
		apiErr.Status = env.Status
		apiErr.Message = env.Message
		return nil, apiErr
	}
	return &env, nil
}

func excerpt(body []byte) string {
	if len(body) > maxErrorExcerpt {
		return string(body[:maxErrorExcerpt]) + "..."
	}
	return string(body)
}

var _ directory.EmployeeAPI = (*Client)(nil)
