package utorrent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jfxdev/go-utorrent/request"
)

// New connects to the WebUI at config.BaseURL and fetches a session token.
func New(config Config) (*Client, error) {
	return NewWithContext(context.Background(), config)
}

// NewWithContext is New with a context for the token round trip.
func NewWithContext(ctx context.Context, config Config) (*Client, error) {
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base URL")
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, errors.Errorf("base URL must be absolute, got %q", config.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating cookie jar")
	}

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	httpClient := resty.New().
		SetTimeout(config.RequestTimeout).
		SetCookieJar(jar).
		SetBasicAuth(config.Username, config.Password).
		SetHeader("User-Agent", config.UserAgent).
		SetRetryCount(0).
		SetLogger(restyLogger{l: logger})

	c := &Client{
		config:  config,
		baseURL: base,
		http:    httpClient,
		logger:  logger,
	}

	if err := c.RefreshToken(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// Token returns the session token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// RefreshToken fetches a new token from token.html and replaces the current one.
func (c *Client) RefreshToken(ctx context.Context) error {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.logger.Debug().Str("base_url", c.config.BaseURL).Msg("session token acquired")
	return nil
}

func (c *Client) tokenURL() string {
	return c.baseURL.ResolveReference(&url.URL{Path: "token.html"}).String()
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	resp, err := request.Do(c.http, http.MethodGet, c.tokenURL(), request.WithContext(ctx))
	if err != nil {
		return "", ClassifyError(err)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e := newAuthError("credentials rejected by token endpoint", nil)
		e.StatusCode = status
		return "", e
	case !resp.IsSuccess():
		return "", newStatusError(status, resp.Body())
	}

	token, err := extractToken(resp.Body())
	if err != nil {
		return "", newAuthError("could not obtain session token", err)
	}
	return token, nil
}

func (c *Client) actionURL(params request.Params) string {
	u := c.config.BaseURL + "?token=" + url.QueryEscape(c.Token())
	if len(params) > 0 {
		u += "&" + params.Encode()
	}
	return u
}

// perform sends one action and decodes its JSON answer.
func (c *Client) perform(ctx context.Context, method string, params request.Params, opts ...request.RequestOption) (*Response, error) {
	opts = append(opts, request.WithContext(ctx))

	log := c.logger.With().
		Str("method", method).
		Str("action", actionName(params)).
		Int("hashes", params.Count("hash")).
		Logger()

	resp, err := request.Do(c.http, method, c.actionURL(params), opts...)
	if err == nil && c.config.RefreshTokenOnAuthFailure && isAuthStatus(resp.StatusCode()) {
		log.Debug().Int("status", resp.StatusCode()).Msg("refreshing token after auth failure")
		if rerr := c.RefreshToken(ctx); rerr != nil {
			return nil, rerr
		}
		resp, err = request.Do(c.http, method, c.actionURL(params), opts...)
	}
	if err != nil {
		log.Debug().Err(err).Msg("request failed")
		return nil, ClassifyError(err)
	}

	log.Debug().Int("status", resp.StatusCode()).Msg("response received")

	if !resp.IsSuccess() {
		return nil, newStatusError(resp.StatusCode(), resp.Body())
	}

	raw := resp.Body()
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, newProtocolError("response is not valid JSON", err)
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Data:       data,
		Raw:        json.RawMessage(raw),
	}, nil
}

func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func actionName(params request.Params) string {
	if params.Get("list") == "1" {
		return "list"
	}
	return params.Get("action")
}
