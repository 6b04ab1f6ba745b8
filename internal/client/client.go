// Package client talks to the timesheet REST API and holds the client-side
// workflow state: the week list, the entry form and the approval controller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
	"golang.org/x/oauth2"
)

// FallbackMessage is shown when a failure carries no usable message.
const FallbackMessage = "Something went wrong. Please try again."

var (
	ErrUnauthorized = errors.New("session expired or missing")
	ErrForbidden    = errors.New("not allowed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflicting change")

	// Local refusals; no request is sent.
	ErrNoSelection        = errors.New("no timesheet entry selected")
	ErrTransitionInFlight = errors.New("a status change for this entry is already in progress")
	ErrNoDrafts           = errors.New("there are no draft entries to submit")
	ErrNoEntryLoaded      = errors.New("entry is not in the current list")
)

// userFacing errors carry text written for the user.
var userFacing = []error{
	ErrUnauthorized,
	ErrNoSelection,
	ErrTransitionInFlight,
	ErrNoDrafts,
	ErrNoEntryLoaded,
	timesheet.ErrEntryNotEditable,
	timesheet.ErrEntryNotDeletable,
	timesheet.ErrInvalidTransition,
	timesheet.ErrNoHoursLogged,
	timesheet.ErrRejectionReason,
}

// APIError is a non-2xx reply decoded from the response envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is lets callers test the HTTP class with errors.Is(err, ErrNotFound).
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Fields returns the server's field-level validation messages, if any.
func (e *APIError) Fields() validator.ValidationErrors {
	if e.StatusCode != http.StatusUnprocessableEntity || len(e.Details) == 0 {
		return nil
	}
	return validator.FromMap(e.Details)
}

// IsStale reports whether err means the displayed entry no longer matches the
// server, in which case the list should reload.
func IsStale(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}

// Message is the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return FallbackMessage
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Message
	}
	for _, local := range userFacing {
		if errors.Is(err, local) {
			return local.Error()
		}
	}
	return FallbackMessage
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *http.Client
	onUnauthorized func()
}

type Option func(*options)

type options struct {
	httpClient     *http.Client
	tokens         oauth2.TokenSource
	onUnauthorized func()
}

// WithHTTPClient replaces the underlying client, e.g. for timeouts or tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTokenSource attaches bearer tokens to every request.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) { o.tokens = ts }
}

// WithUnauthorizedHook is called whenever the server answers 401. It is the
// entry point for sending the user back to login.
func WithUnauthorizedHook(fn func()) Option {
	return func(o *options) { o.onUnauthorized = fn }
}

// New builds a client for the API rooted at baseURL, e.g. http://host/api/v1.
func New(baseURL string, opts ...Option) *Client {
	o := options{httpClient: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if o.tokens != nil {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc = &http.Client{
			Transport:     &oauth2.Transport{Source: o.tokens, Base: base},
			Timeout:       hc.Timeout,
			CheckRedirect: hc.CheckRedirect,
			Jar:           hc.Jar,
		}
	}

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           hc,
		onUnauthorized: o.onUnauthorized,
	}
}

// StaticToken wraps a fixed access token.
func StaticToken(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		// A token source that cannot refresh fails inside the transport.
		if errors.Is(err, ErrUnauthorized) {
			c.unauthorized()
		}
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized()
	}
	return resp, nil
}

func (c *Client) unauthorized() {
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// do sends a JSON request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := decodeJSON(resp.Body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromEnvelope(resp.StatusCode, env, decodeErr)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func decodeJSON(r io.Reader, v interface{}) error {
	return json.NewDecoder(r).Decode(v)
}

func errorFromEnvelope(status int, env envelope, decodeErr error) *APIError {
	apiErr := &APIError{StatusCode: status}
	if decodeErr != nil {
		return apiErr
	}
	if env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	if apiErr.Message == "" {
		apiErr.Message = env.Message
	}
	return apiErr
}
