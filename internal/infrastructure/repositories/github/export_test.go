package github

import "time"

// NewRetryTransport exports newRetryTransport for testing.
var NewRetryTransport = newRetryTransport //nolint:gochecknoglobals // test export

// NewAPIClient exports newAPIClient for testing.
var NewAPIClient = newAPIClient //nolint:gochecknoglobals // test export

// NewAuthenticatedClient exports newAuthenticatedClient for testing.
var NewAuthenticatedClient = newAuthenticatedClient //nolint:gochecknoglobals // test export

// APIBaseURL exports apiBaseURL for testing.
var APIBaseURL = apiBaseURL //nolint:gochecknoglobals // test export

// ClassifyError exports classifyError for testing.
var ClassifyError = classifyError //nolint:gochecknoglobals // test export

// SetClock replaces the clock used to sign app JWTs.
func SetClock(s *InstallationTokenSource, now func() time.Time) {
	s.now = now
}
