// File: internal/mailru/fetcher.go
package mailru

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mailru_broker/internal/shared"

	"go.uber.org/zap"
)

const (
	opFetchProfile = "fetch profile"

	maxProfileBytes = 1 << 20
)

// ProfileFetcher resolves a bearer token into the provider's raw profile.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (shared.RawProfile, error)
}

// Recorder receives federation outcomes. internal/metrics provides the
// prometheus implementation.
type Recorder interface {
	ObserveFetch(outcome string, elapsed time.Duration)
	ObserveNormalize(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFetch(string, time.Duration) {}
func (nopRecorder) ObserveNormalize(string)            {}

// Fetch outcomes reported to the Recorder.
const (
	FetchOK        = "ok"
	FetchTransport = "transport_error"
	FetchStatus    = "bad_status"
	FetchDecode    = "decode_error"
)

// HTTPProfileFetcher calls ProfileURL with the token as the access_token
// query parameter. One request per call, no retries.
type HTTPProfileFetcher struct {
	client       *http.Client
	logger       *zap.Logger
	recorder     Recorder
	logSensitive bool
}

// FetcherOption configures an HTTPProfileFetcher.
type FetcherOption func(*HTTPProfileFetcher)

// WithRecorder sets the outcome recorder.
func WithRecorder(r Recorder) FetcherOption {
	return func(f *HTTPProfileFetcher) {
		if r != nil {
			f.recorder = r
		}
	}
}

// WithSensitiveLogging logs raw tokens and profile bodies at debug level.
func WithSensitiveLogging(enabled bool) FetcherOption {
	return func(f *HTTPProfileFetcher) { f.logSensitive = enabled }
}

// NewHTTPProfileFetcher creates a fetcher. The client's timeout bounds how long
// a fetch may block; a nil client gets a 10 second timeout.
func NewHTTPProfileFetcher(client *http.Client, logger *zap.Logger, opts ...FetcherOption) *HTTPProfileFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &HTTPProfileFetcher{
		client:   client,
		logger:   logger.Named("MailRuProfileFetcher"),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchProfile performs GET ProfileURL?access_token=<token> and decodes the
// JSON object in the response body.
func (f *HTTPProfileFetcher) FetchProfile(ctx context.Context, token string) (shared.RawProfile, error) {
	if strings.TrimSpace(token) == "" {
		return nil, f.fail(ErrEmptyToken)
	}

	u, err := url.Parse(ProfileURL)
	if err != nil {
		return nil, f.fail(err)
	}
	q := u.Query()
	q.Set("access_token", token)
	u.RawQuery = q.Encode()

	f.logger.Debug("Resolving Mail.ru user profile",
		zap.String("subjectToken", f.tokenForLog(token)),
		zap.String("userInfoUrl", ProfileURL),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, f.fail(err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.recorder.ObserveFetch(FetchTransport, time.Since(start))
		// The request URL carries the token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = ProfileURL
		}
		f.logger.Warn("Mail.ru profile request failed", zap.Error(err))
		return nil, f.fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		f.recorder.ObserveFetch(FetchStatus, time.Since(start))
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		f.logger.Warn("Mail.ru profile endpoint returned an error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(bodyBytes)),
		)
		return nil, f.fail(&StatusError{StatusCode: resp.StatusCode})
	}

	var doc interface{}
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		f.recorder.ObserveFetch(FetchDecode, time.Since(start))
		return nil, f.fail(fmt.Errorf("decode profile: %w", err))
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		f.recorder.ObserveFetch(FetchDecode, time.Since(start))
		return nil, f.fail(errors.New("profile is not a JSON object"))
	}
	f.recorder.ObserveFetch(FetchOK, time.Since(start))

	profile := shared.RawProfile(obj)
	if f.logSensitive {
		f.logger.Debug("Mail.ru profile received", zap.Any("profile", obj))
	} else {
		f.logger.Debug("Mail.ru profile received", zap.Strings("keys", profileKeys(profile)))
	}
	return profile, nil
}

func (f *HTTPProfileFetcher) fail(err error) error {
	return &FederationIOError{Provider: ProviderName, Op: opFetchProfile, Err: err}
}

func (f *HTTPProfileFetcher) tokenForLog(token string) string {
	if f.logSensitive {
		return token
	}
	return redact(token)
}

func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return fmt.Sprintf("%s...(%d chars)", s[:4], len(s))
}

func profileKeys(p shared.RawProfile) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}
