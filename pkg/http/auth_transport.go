package http

import "net/http"

type authTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.value != "" {
		reqCopy.Header.Set(t.header, t.value)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends the token as an Authorization bearer header on
// every request of the client.
func WithAuthToken(token string) HttpOpts {
	value := ""
	if token != "" {
		value = "Bearer " + token
	}
	return withStaticHeader("Authorization", value)
}

// WithAPIKeyHeader sends a provider API key under its own header name,
// for services that do not use bearer authorization.
func WithAPIKeyHeader(header, key string) HttpOpts {
	return withStaticHeader(header, key)
}

func withStaticHeader(header, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    header,
			value:     value,
			transport: rt,
		}
	})
}
