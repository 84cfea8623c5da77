package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/teampulse/backend/pkg/redis"
)

const tokenCacheKey = "email:provider_token"

// TokenSource obtains the email provider's OAuth access token via the
// client-credentials grant and caches it in Redis so a whole batch reuses one
// token. A nil cache falls back to fetching per call.
type TokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	cache        *redis.Client
	client       *http.Client
	logger       *zap.Logger
}

// NewTokenSource creates a provider token source. cache may be nil.
func NewTokenSource(tokenURL, clientID, clientSecret string, cache *redis.Client, logger *zap.Logger) *TokenSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenSource{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		cache:        cache,
		client:       &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

// Token returns a valid access token, from cache when possible.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	if t.cache != nil {
		tok, err := t.cache.Get(ctx, tokenCacheKey).Result()
		if err == nil && tok != "" {
			return tok, nil
		}
		if err != nil && err != goredis.Nil {
			t.logger.Warn("token cache read failed", zap.Error(err))
		}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", t.clientID)
	form.Set("client_secret", t.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request: status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token response: empty access_token")
	}

	if t.cache != nil && out.ExpiresIn > 60 {
		ttl := time.Duration(out.ExpiresIn-60) * time.Second
		if err := t.cache.Set(ctx, tokenCacheKey, out.AccessToken, ttl).Err(); err != nil {
			t.logger.Warn("token cache write failed", zap.Error(err))
		}
	}
	return out.AccessToken, nil
}

// APISender delivers mail through an HTTP provider using a bearer token from
// the TokenSource.
type APISender struct {
	baseURL  string
	tokens   *TokenSource
	from     string
	fromName string
	client   *http.Client
}

// NewAPISender creates an HTTP API sender.
func NewAPISender(baseURL string, tokens *TokenSource, from, fromName string) *APISender {
	return &APISender{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokens:   tokens,
		from:     from,
		fromName: fromName,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type apiAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type apiSendRequest struct {
	From    apiAddress   `json:"from"`
	To      []apiAddress `json:"to"`
	Subject string       `json:"subject"`
	Text    string       `json:"text"`
}

// Send delivers one message via the provider API.
func (s *APISender) Send(ctx context.Context, msg Message) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("provider token: %w", err)
	}

	payload, err := json.Marshal(apiSendRequest{
		From:    apiAddress{Email: s.from, Name: s.fromName},
		To:      []apiAddress{{Email: msg.To, Name: msg.ToName}},
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("api send to %s: %w", msg.To, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api send to %s: status %d: %s", msg.To, resp.StatusCode, body)
	}
	return nil
}
