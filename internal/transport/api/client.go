package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/globetrotter/internal/apperror"
	"github.com/rocketscienceinc/globetrotter/internal/entity"
)

const (
	opRandomDestination = "random destination"
	opSubmitGuess       = "submit guess"
	opCreateUser        = "create user"
	opFetchProfile      = "fetch profile"

	maxErrorBody = 64 << 10
)

// Client - talks to the Globetrotter backend. It never retries on its own.
type Client struct {
	logger  *slog.Logger
	baseURL string
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient - replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(that *Client) {
		that.http = httpClient
	}
}

// WithTimeout - per-request timeout, zero means none. It is applied to a copy of the http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(that *Client) {
		that.timeout = timeout
	}
}

// WithRateLimit - throttles outbound calls; rps <= 0 disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(that *Client) {
		if rps <= 0 {
			that.limiter = nil
			return
		}

		if burst < 1 {
			burst = 1
		}

		that.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(logger *slog.Logger, baseURL string, opts ...Option) *Client {
	client := &Client{
		logger:  logger.With("component", "api"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.timeout > 0 {
		httpClient := *client.http
		httpClient.Timeout = client.timeout
		client.http = &httpClient
	}

	return client
}

// FetchRandomDestination - GET /destinations/random/.
func (that *Client) FetchRandomDestination(ctx context.Context) (*entity.DestinationRound, error) {
	var round entity.DestinationRound

	if err := that.do(ctx, request{
		op:     opRandomDestination,
		method: http.MethodGet,
		path:   "/destinations/random/",
	}, &round); err != nil {
		return nil, err
	}

	return &round, nil
}

type guessRequest struct {
	City     string `json:"city"`
	Guess    string `json:"guess"`
	Username string `json:"username"`
}

// SubmitGuess - POST /guess/.
func (that *Client) SubmitGuess(ctx context.Context, correctCity, guess, username string) (*entity.GuessResult, error) {
	var result entity.GuessResult

	if err := that.do(ctx, request{
		op:     opSubmitGuess,
		method: http.MethodPost,
		path:   "/guess/",
		body:   guessRequest{City: correctCity, Guess: guess, Username: username},
	}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// FetchUserProfile - GET /users/{username}/. An unknown user yields apperror.ErrNotFound.
func (that *Client) FetchUserProfile(ctx context.Context, username string) (*entity.Profile, error) {
	var profile entity.Profile

	if err := that.do(ctx, request{
		op:     opFetchProfile,
		method: http.MethodGet,
		path:   "/users/" + url.PathEscape(username) + "/",
	}, &profile); err != nil {
		return nil, err
	}

	if profile.Username == "" {
		profile.Username = username
	}

	return &profile, nil
}

type createUserRequest struct {
	Username string `json:"username"`
}

// CreateUser - POST /users/. A rejected name yields apperror.ErrValidation.
func (that *Client) CreateUser(ctx context.Context, username string) (*entity.Profile, error) {
	var profile entity.Profile

	if err := that.do(ctx, request{
		op:         opCreateUser,
		method:     http.MethodPost,
		path:       "/users/",
		body:       createUserRequest{Username: username},
		validation: true,
	}, &profile); err != nil {
		return nil, err
	}

	if profile.Username == "" {
		profile.Username = username
	}

	return &profile, nil
}

// LoginOrCreateUser - fetches the profile and, if the user is unknown, creates it and fetches again.
func (that *Client) LoginOrCreateUser(ctx context.Context, username string) (*entity.Profile, bool, error) {
	log := that.logger.With("method", "LoginOrCreateUser", "username", username)

	profile, err := that.FetchUserProfile(ctx, username)
	if err == nil {
		return profile, false, nil
	}

	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, false, err
	}

	log.Info("user not found, creating")

	if _, err = that.CreateUser(ctx, username); err != nil {
		return nil, false, err
	}

	profile, err = that.FetchUserProfile(ctx, username)
	if err != nil {
		return nil, false, err
	}

	return profile, true, nil
}

type request struct {
	op     string
	method string
	path   string
	body   any
	// validation maps 4xx responses other than 404 to apperror.ErrValidation
	validation bool
}

func (that *Client) do(ctx context.Context, req request, out any) error {
	log := that.logger.With("op", req.op, "method", req.method, "path", req.path)
	start := time.Now()

	if that.limiter != nil {
		if err := that.limiter.Wait(ctx); err != nil {
			log.Error("rate limiter wait failed", "error", err)
			return &apperror.APIError{Op: req.op, Err: apperror.ErrNetwork, Cause: err}
		}
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", req.op, err)
		}

		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, that.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", req.op, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := that.http.Do(httpReq)
	if err != nil {
		log.Error("request failed", "error", err)
		return &apperror.APIError{Op: req.op, Err: apperror.ErrNetwork, Cause: err}
	}
	defer resp.Body.Close()

	log.Debug("response received", "status", resp.StatusCode, "latency", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := classify(req, resp)
		if errors.Is(apiErr, apperror.ErrNotFound) {
			log.Debug("resource not found")
		} else {
			log.Error("request rejected", "status", resp.StatusCode, "error", apiErr)
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("malformed response", "error", err)
		return &apperror.APIError{
			Op:      req.op,
			Status:  resp.StatusCode,
			Message: "malformed response from server",
			Err:     apperror.ErrServer,
			Cause:   err,
		}
	}

	return nil
}

func classify(req request, resp *http.Response) *apperror.APIError {
	apiErr := &apperror.APIError{Op: req.op, Status: resp.StatusCode}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Err = apperror.ErrNotFound
	case req.validation && resp.StatusCode >= 400 && resp.StatusCode < 500:
		apiErr.Err = apperror.ErrValidation
		apiErr.Message = errorMessage(io.LimitReader(resp.Body, maxErrorBody))
	default:
		apiErr.Err = apperror.ErrServer
	}

	return apiErr
}

// errorMessage - pulls a readable message out of a field-error body ({"username": ["..."]}) or a {"detail": "..."} body.
func errorMessage(body io.Reader) string {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return ""
	}

	if raw, ok := fields["username"]; ok {
		var messages []string
		if err := json.Unmarshal(raw, &messages); err == nil && len(messages) > 0 {
			return messages[0]
		}

		var message string
		if err := json.Unmarshal(raw, &message); err == nil {
			return message
		}
	}

	if raw, ok := fields["detail"]; ok {
		var message string
		if err := json.Unmarshal(raw, &message); err == nil {
			return message
		}
	}

	return ""
}
