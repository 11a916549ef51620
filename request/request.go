package request

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Param is a single query pair. Keys may repeat within Params.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query pairs.
//
// Unlike url.Values, encoding keeps insertion order, which the WebUI relies
// on for interleaved pairs such as s=label&v=movies&s=ulrate&v=0.
type Params []Param

// Add appends a pair.
func (p *Params) Add(key, value string) {
	*p = append(*p, Param{Key: key, Value: value})
}

// Get returns the first value stored under key.
func (p Params) Get(key string) string {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value
		}
	}
	return ""
}

// Count returns how many pairs use key.
func (p Params) Count(key string) int {
	n := 0
	for _, kv := range p {
		if kv.Key == key {
			n++
		}
	}
	return n
}

// Encode renders the pairs as a query string in insertion order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// RequestOptions holds per-request settings.
type RequestOptions struct {
	Body    []byte
	Headers map[string]string
	Ctx     context.Context
}

// RequestOption mutates RequestOptions.
type RequestOption func(*RequestOptions)

// WithBody attaches a raw body to the request
func WithBody(body []byte) RequestOption {
	return func(o *RequestOptions) {
		o.Body = body
	}
}

// WithHeader sets one header
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// WithHeaders sets several headers at once
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithContext binds the request to ctx
func WithContext(ctx context.Context) RequestOption {
	return func(o *RequestOptions) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// Do executes method against rawURL through client. Non-2xx responses are
// returned without error; callers inspect the status themselves.
func Do(client *resty.Client, method, rawURL string, opts ...RequestOption) (*resty.Response, error) {
	options := &RequestOptions{
		Ctx: context.Background(),
	}

	for _, opt := range opts {
		opt(options)
	}

	req := client.R().SetContext(options.Ctx)

	if len(options.Headers) > 0 {
		req.SetHeaders(options.Headers)
	}

	if options.Body != nil {
		req.SetBody(options.Body)
	}

	return req.Execute(method, rawURL)
}
