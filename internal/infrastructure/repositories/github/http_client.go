package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
)

const (
	defaultAPIURL       = "https://api.github.com/"
	defaultRetryWaitMin = 500 * time.Millisecond
	defaultRetryWaitMax = 5 * time.Second
	userAgent           = "manifestpush"
)

// apiBaseURL parses the REST API root, defaulting to api.github.com.
// go-github requires the trailing slash.
func apiBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		raw = defaultAPIURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid API URL %q", entities.ErrConfiguration, raw)
	}
	return u, nil
}

func newAPIClient(baseURL *url.URL, httpClient *http.Client) *gh.Client {
	client := gh.NewClient(httpClient)
	client.BaseURL = baseURL
	client.UserAgent = userAgent
	return client
}

// newRetryTransport retries connection errors, 429 and 5xx (except 501) up to
// retries times. Any 4xx is returned immediately, so conflicts and not-found
// responses are never retried. The last response is passed through so
// go-github can still decode the provider's error message.
func newRetryTransport(retries int, waitMin, waitMax time.Duration) http.RoundTripper {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = waitMin
	client.RetryWaitMax = waitMax
	client.Logger = retryLogger{}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &retryablehttp.RoundTripper{Client: client}
}

// contextTokenSource fetches tokens under the context of the request that needs them.
type contextTokenSource interface {
	TokenContext(ctx context.Context) (*oauth2.Token, error)
}

// newAuthenticatedClient adds the bearer token on top of the retrying transport.
// Sources that can fetch under a context get the request's context, so a
// token exchange counts against the publish deadline.
func newAuthenticatedClient(source oauth2.TokenSource, base http.RoundTripper) *http.Client {
	if cs, ok := source.(contextTokenSource); ok {
		return &http.Client{Transport: &contextTokenTransport{source: cs, base: base}}
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: source, Base: base},
	}
}

// contextTokenTransport is oauth2.Transport with the token fetched under req.Context().
type contextTokenTransport struct {
	source contextTokenSource
	base   http.RoundTripper
}

func (t *contextTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.TokenContext(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}

	authorized := req.Clone(req.Context())
	token.SetAuthHeader(authorized)
	return t.base.RoundTrip(authorized)
}

// retryLogger adapts logrus to retryablehttp.LeveledLogger.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.WithFields(toFields(keysAndValues)).Error(msg)
}

func (retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.WithFields(toFields(keysAndValues)).Warn(msg)
}

func (retryLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.WithFields(toFields(keysAndValues)).Debug(msg)
}

func toFields(keysAndValues []interface{}) logger.Fields {
	fields := make(logger.Fields, len(keysAndValues)/2) //nolint:mnd // key/value pairs
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
