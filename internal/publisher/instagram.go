package publisher

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
	"time"

	"github.com/postpilot/autopost/internal/resilience"
	"github.com/postpilot/autopost/internal/transfer"
)

// ErrContainerTimeout marks a poll budget exhausted while the container was
// still IN_PROGRESS. Distinct from a provider-reported container error.
var ErrContainerTimeout = errors.New("container processing timed out")

// Graph error codes and subcodes considered transient. Anything else reported
// by the provider is a permanent failure for this attempt.
var transientGraphCodes = map[int]struct{}{
	1: {}, // unknown server error
	2: {}, // service temporarily unavailable
}

var transientGraphSubcodes = map[int]struct{}{
	2207001: {}, // media builder expired
	2207003: {}, // timeout downloading media
	2207051: {}, // container creation failed, try again
	9007:    {}, // media not ready for publish
}

type InstagramOption func(*InstagramPublisher)

func WithHTTPClient(client *http.Client) InstagramOption {
	return func(p *InstagramPublisher) { p.client = client }
}

func WithPolicy(policy *resilience.Policy) InstagramOption {
	return func(p *InstagramPublisher) { p.policy = policy }
}

// WithPolling overrides the container poll schedule: attempts polls spaced by
// interval. This budget is independent of the resilience timeout.
func WithPolling(interval time.Duration, attempts int) InstagramOption {
	return func(p *InstagramPublisher) {
		p.pollInterval = interval
		p.pollAttempts = attempts
	}
}

// InstagramPublisher drives the asynchronous reel publish protocol:
// create container, poll its status, publish, resolve the permalink.
// It short-circuits at the first step that yields no usable id.
type InstagramPublisher struct {
	baseURL      string
	client       *http.Client
	policy       *resilience.Policy
	pollInterval time.Duration
	pollAttempts int
}

func NewInstagramPublisher(baseURL string, opts ...InstagramOption) *InstagramPublisher {
	p := &InstagramPublisher{
		baseURL:      baseURL,
		client:       http.DefaultClient,
		pollInterval: 10 * time.Second,
		pollAttempts: 30,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.policy == nil {
		opts := resilience.DefaultOptions()
		opts.IsTransient = IsTransientGraphError
		p.policy = resilience.NewPolicy("instagram", opts)
	}
	return p
}

func (p *InstagramPublisher) Publish(ctx context.Context, req Request) (*Result, error) {
	// One wall-clock ceiling for the whole protocol invocation, steps and
	// poll sleeps included. The poll budget stays the distinct inner bound.
	if timeout := p.policy.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	containerID, err := p.createContainer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	if err := p.waitForContainer(ctx, containerID, req.AccessToken); err != nil {
		return nil, fmt.Errorf("container %s: %w", containerID, err)
	}

	mediaID, err := p.publishContainer(ctx, req, containerID)
	if err != nil {
		return nil, fmt.Errorf("publish container %s: %w", containerID, err)
	}

	permalink, err := p.resolvePermalink(ctx, mediaID, req.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("resolve permalink for %s: %w", mediaID, err)
	}

	return &Result{ExternalPostID: mediaID, PublicURL: permalink}, nil
}

func (p *InstagramPublisher) createContainer(ctx context.Context, req Request) (string, error) {
	payload := map[string]interface{}{
		"media_type":   "REELS",
		"video_url":    req.MediaURL,
		"caption":      req.Description,
		"access_token": req.AccessToken,
	}
	if req.CoverURL != "" {
		payload["cover_url"] = req.CoverURL
	}
	if req.ShareToFeed {
		payload["share_to_feed"] = true
	}

	resp, err := p.post(ctx, fmt.Sprintf("%s/%s/media", p.baseURL, req.BusinessAccountID), payload)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		slog.Error("no container id in create response", "body", string(resp.Raw))
		return "", errors.New("no container id returned")
	}
	return resp.ID, nil
}

func (p *InstagramPublisher) waitForContainer(ctx context.Context, containerID, accessToken string) error {
	statusURL := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s", p.baseURL, containerID, url.QueryEscape(accessToken))

	for attempt := 0; attempt < p.pollAttempts; attempt++ {
		resp, err := p.get(ctx, statusURL)
		if err != nil {
			return err
		}

		switch resp.StatusCode {
		case transfer.ContainerFinished:
			return nil
		case transfer.ContainerError, transfer.ContainerExpired:
			slog.Error("container left in-progress with failure", "status", resp.StatusCode, "body", string(resp.Raw))
			return fmt.Errorf("container entered state %s", resp.StatusCode)
		case transfer.ContainerInProgress:
			// Not ready yet; wait out the fixed delay and poll again.
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}

	return fmt.Errorf("%w after %d attempts", ErrContainerTimeout, p.pollAttempts)
}

func (p *InstagramPublisher) publishContainer(ctx context.Context, req Request, containerID string) (string, error) {
	payload := map[string]interface{}{
		"creation_id":  containerID,
		"access_token": req.AccessToken,
	}

	resp, err := p.post(ctx, fmt.Sprintf("%s/%s/media_publish", p.baseURL, req.BusinessAccountID), payload)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		slog.Error("no media id in publish response", "body", string(resp.Raw))
		return "", errors.New("no media id returned")
	}
	return resp.ID, nil
}

func (p *InstagramPublisher) resolvePermalink(ctx context.Context, mediaID, accessToken string) (string, error) {
	reqURL := fmt.Sprintf("%s/%s?fields=permalink&access_token=%s", p.baseURL, mediaID, url.QueryEscape(accessToken))

	resp, err := p.get(ctx, reqURL)
	if err != nil {
		return "", err
	}
	if resp.Permalink == "" {
		slog.Error("no permalink in response", "body", string(resp.Raw))
		return "", errors.New("no permalink returned")
	}
	return resp.Permalink, nil
}

func (p *InstagramPublisher) post(ctx context.Context, url string, payload map[string]interface{}) (*transfer.GraphResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}
	return p.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

func (p *InstagramPublisher) get(ctx context.Context, url string) (*transfer.GraphResponse, error) {
	return p.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", url, nil)
	})
}

// do runs one protocol step under the resilience policy and decodes the
// uniform response envelope. A structured Graph error is returned as the
// error so the retry classifier can inspect it.
func (p *InstagramPublisher) do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*transfer.GraphResponse, error) {
	var envelope *transfer.GraphResponse

	err := p.policy.Execute(ctx, func(ctx context.Context) error {
		req, err := build(ctx)
		if err != nil {
			return err
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request error: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading response body: %w", err)
		}

		var decoded transfer.GraphResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			if resp.StatusCode >= 400 {
				return &httpStatusError{status: resp.StatusCode, body: raw}
			}
			return fmt.Errorf("error parsing response: %w", err)
		}
		decoded.Raw = raw

		if decoded.Error != nil {
			slog.Info("graph api returned error", "message", decoded.Error.Message, "code", decoded.Error.Code, "subcode", decoded.Error.ErrorSubcode, "transient", decoded.Error.IsTransient)
			return decoded.Error
		}
		if resp.StatusCode != http.StatusOK {
			return &httpStatusError{status: resp.StatusCode, body: raw}
		}

		envelope = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return envelope, nil
}

type httpStatusError struct {
	status int
	body   []byte
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.status, e.body)
}

// IsTransientGraphError is the retry classifier for Graph API calls:
// transport failures, 5xx responses, and provider errors either flagged
// is_transient or carrying an allow-listed code/subcode.
func IsTransientGraphError(err error) bool {
	if resilience.IsNetworkError(err) {
		return true
	}

	var httpErr *httpStatusError
	if errors.As(err, &httpErr) {
		return httpErr.status >= 500
	}

	var graphErr *transfer.GraphError
	if errors.As(err, &graphErr) {
		if graphErr.IsTransient {
			return true
		}
		if _, ok := transientGraphCodes[graphErr.Code]; ok {
			return true
		}
		if _, ok := transientGraphSubcodes[graphErr.ErrorSubcode]; ok {
			return true
		}
	}
	return false
}
