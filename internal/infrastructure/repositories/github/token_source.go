package github

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
)

const (
	// GitHub rejects app JWTs valid for more than 10 minutes.
	appJWTLifetime = 9 * time.Minute
	// iat is backdated to tolerate clock drift against the API.
	appJWTClockSkew = 60 * time.Second
)

// NewTokenSource selects the credential strategy from settings: an installation
// token when an application identity is configured, the static token otherwise.
// httpClient carries the app JWT requests and must not add credentials of its own.
func NewTokenSource(
	settings *entities.Settings,
	baseURL *url.URL,
	httpClient *http.Client,
) (oauth2.TokenSource, error) {
	if settings.UsesAppAuth() {
		logger.Info("Authenticating as GitHub App...")
		source, err := NewInstallationTokenSource(
			settings.App, settings.RepositoryRef(), baseURL, httpClient,
		)
		if err != nil {
			return nil, err
		}
		return source, nil
	}

	if settings.Token != "" {
		logger.Info("No APP_ID or APP_PRIVATE_KEY set, using GITHUB_TOKEN.")
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: settings.Token}), nil
	}

	return nil, fmt.Errorf("%w: no credentials configured", entities.ErrConfiguration)
}

// InstallationTokenSource exchanges an application identity for a short-lived
// installation token and reuses it until it is about to expire. The exchange
// runs under the context of the request that needed the token.
type InstallationTokenSource struct {
	mu    sync.Mutex
	token *oauth2.Token

	appID          int64
	installationID int64
	key            *rsa.PrivateKey
	repo           entities.RepositoryRef
	baseURL        *url.URL
	httpClient     *http.Client
	now            func() time.Time
}

// NewInstallationTokenSource parses the private key up front so a malformed key
// is reported before any request.
func NewInstallationTokenSource(
	app entities.AppSettings,
	repo entities.RepositoryRef,
	baseURL *url.URL,
	httpClient *http.Client,
) (*InstallationTokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(app.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid app private key: %w", entities.ErrConfiguration, err)
	}

	return &InstallationTokenSource{
		appID:          app.ID,
		installationID: app.InstallationID,
		key:            key,
		repo:           repo,
		baseURL:        baseURL,
		httpClient:     httpClient,
		now:            time.Now,
	}, nil
}

// Token implements oauth2.TokenSource.
func (s *InstallationTokenSource) Token() (*oauth2.Token, error) {
	return s.TokenContext(context.Background())
}

// TokenContext returns the cached installation token, exchanging a new one
// under ctx when none is cached or the cached one has expired.
func (s *InstallationTokenSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Valid() {
		return s.token, nil
	}
	token, err := s.exchange(ctx)
	if err != nil {
		return nil, err
	}
	s.token = token
	return token, nil
}

func (s *InstallationTokenSource) exchange(ctx context.Context) (*oauth2.Token, error) {
	appJWT, err := s.signAppJWT()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign app JWT: %w", entities.ErrAuthentication, err)
	}
	client := newAPIClient(s.baseURL, s.httpClient).WithAuthToken(appJWT)

	if s.installationID == 0 {
		installation, _, findErr := client.Apps.FindRepositoryInstallation(ctx, s.repo.Owner, s.repo.Name)
		if findErr != nil {
			return nil, fmt.Errorf(
				"%w: no app installation found for %s: %w", entities.ErrAuthentication, s.repo, findErr,
			)
		}
		s.installationID = installation.GetID()
		logger.Debugf("Using installation %d for %s", s.installationID, s.repo)
	}

	token, _, err := client.Apps.CreateInstallationToken(ctx, s.installationID, nil)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: failed to create installation token for installation %d: %w",
			entities.ErrAuthentication, s.installationID, err,
		)
	}

	return &oauth2.Token{
		AccessToken: token.GetToken(),
		TokenType:   "Bearer",
		Expiry:      token.GetExpiresAt().Time,
	}, nil
}

func (s *InstallationTokenSource) signAppJWT() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(s.appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-appJWTClockSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
}
