package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/bnema/aula-cli/internal/ports"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultLoginURL      = "https://login.aula.dk/auth/login.php?type=unilogin"
	DefaultLandingURL    = "https://www.aula.dk/portal/"
	DefaultMaxLoginSteps = 10

	maxPageBytes   = 4 << 20
	csrfCookieName = "Csrfp-Token"
	accountProfile = "KONTAKT"
	identityParam  = "selectedIdp"
	identityValue  = "uni_idp"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/112.0"
)

var (
	errNoForm    = fmt.Errorf("%w: no form on page", domain.ErrProtocol)
	errNoSession = errors.New("portal session not established")
)

type Config struct {
	LoginURL       string
	LandingURL     string
	APIBase        string
	StartVersion   int
	MaxProbes      int
	MaxLoginSteps  int
	RequestTimeout time.Duration
	// Transport is used for every request when set.
	Transport http.RoundTripper
}

// Session is a browser-like login against UNI-Login plus the resolved API
// endpoint. A login replaces the cookie jar, endpoint and cached profiles
// together.
type Session struct {
	cfg      Config
	username string
	secrets  ports.SecretStore
	logger   hclog.Logger

	mu       sync.RWMutex
	client   *http.Client
	endpoint domain.APIEndpoint
	profiles []domain.GuardianProfile
	guardian domain.Guardian
}

var (
	_ ports.Portal      = (*Session)(nil)
	_ ports.TokenIssuer = (*Session)(nil)
)

func NewSession(cfg Config, username string, secrets ports.SecretStore, logger hclog.Logger) *Session {
	if cfg.LoginURL == "" {
		cfg.LoginURL = DefaultLoginURL
	}
	if cfg.LandingURL == "" {
		cfg.LandingURL = DefaultLandingURL
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.MaxLoginSteps <= 0 {
		cfg.MaxLoginSteps = DefaultMaxLoginSteps
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Session{
		cfg:      cfg,
		username: strings.TrimSpace(username),
		secrets:  secrets,
		logger:   logger,
	}
}

func (s *Session) EnsureAuthenticated(ctx context.Context) (bool, error) {
	if s.probe(ctx) {
		return false, nil
	}
	if err := s.Login(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// probe checks whether the current session is still accepted and refreshes
// the cached profiles when it is.
func (s *Session) probe(ctx context.Context) bool {
	client, endpoint := s.current()
	if client == nil || !endpoint.Resolved() {
		return false
	}

	var data profilesData
	env, err := s.getEnvelope(ctx, probeMethod)
	if err != nil {
		s.logger.Debug("session probe failed", "error", err)
		return false
	}
	if env.Status.Message != "OK" {
		s.logger.Debug("session no longer accepted", "status", env.Status.Message)
		return false
	}
	if err := env.decodeData(&data); err != nil {
		s.logger.Warn("session alive but profiles unreadable, keeping cached profiles", "error", err)
		return true
	}

	s.mu.Lock()
	s.profiles = data.toDomain()
	s.mu.Unlock()
	return true
}

func (s *Session) Login(ctx context.Context) error {
	if s.username == "" {
		return errors.New("username is required")
	}
	if s.secrets == nil {
		return errors.New("secret store is required")
	}
	password, err := s.secrets.Get(ctx, domain.PasswordKey(s.username))
	if err != nil {
		return fmt.Errorf("load password for %s: %w", s.username, err)
	}

	landing, err := url.Parse(s.cfg.LandingURL)
	if err != nil {
		return fmt.Errorf("parse landing url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}
	client := &http.Client{Jar: jar, Transport: s.cfg.Transport}

	s.logger.Debug("logging in", "username", s.username)

	entry, err := s.fetchPage(ctx, client, http.MethodGet, s.cfg.LoginURL, nil)
	if err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	form, err := parseLoginForm(entry.body, entry.url)
	if err != nil {
		return &domain.LoginError{URL: entry.url.String(), Err: err}
	}

	current, err := s.fetchPage(ctx, client, http.MethodPost, form.Action.String(), url.Values{identityParam: {identityValue}})
	if err != nil {
		return fmt.Errorf("select identity provider: %w", err)
	}

	credentials := map[string]string{
		"username":        s.username,
		"password":        password,
		"selected-aktoer": accountProfile,
	}
	lastURL := form.Action.String()
	steps := 0
	for !sameURL(current.url, landing) {
		if steps >= s.cfg.MaxLoginSteps {
			return &domain.LoginError{URL: lastURL, Attempts: steps, Err: domain.ErrRedirectLimit}
		}

		form, err := parseLoginForm(current.body, current.url)
		if err != nil {
			return &domain.LoginError{URL: current.url.String(), Attempts: steps, Err: err}
		}
		lastURL = form.Action.String()
		s.logger.Trace("posting login form", "step", steps+1, "action", lastURL)

		current, err = s.fetchPage(ctx, client, http.MethodPost, lastURL, form.withCredentials(credentials))
		if err != nil {
			return fmt.Errorf("post login step %d: %w", steps+1, err)
		}
		steps++
	}
	s.logger.Debug("login redirect chain completed", "steps", steps)

	resolver := VersionResolver{
		Base:         s.cfg.APIBase,
		StartVersion: s.cfg.StartVersion,
		MaxProbes:    s.cfg.MaxProbes,
		Logger:       s.logger.Named("version"),
	}
	endpoint, profiles, err := resolver.Resolve(ctx, func(ctx context.Context, rawURL string) (int, []byte, error) {
		return s.send(ctx, client, http.MethodGet, rawURL, nil, nil)
	})
	if err != nil {
		return fmt.Errorf("resolve api version: %w", err)
	}

	status, body, err := s.send(ctx, client, http.MethodGet, endpoint.URL()+"?method=profiles.getProfileContext&portalrole=guardian", nil, nil)
	if err != nil {
		return fmt.Errorf("load guardian profile: %w", err)
	}
	var profileCtx profileContextData
	if err := decodeEnvelopeData(status, body, &profileCtx); err != nil {
		return fmt.Errorf("load guardian profile: %w", err)
	}

	s.mu.Lock()
	s.client = client
	s.endpoint = endpoint
	s.profiles = profiles
	s.guardian = domain.Guardian{UserID: string(profileCtx.UserID), Username: s.username}
	s.mu.Unlock()

	s.logger.Info("logged in", "api", endpoint.URL(), "profiles", len(profiles))
	return nil
}

func (s *Session) GuardianProfiles(_ context.Context) ([]domain.GuardianProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, errNoSession
	}
	out := make([]domain.GuardianProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, domain.GuardianProfile{
			InstitutionCodes: append([]domain.InstitutionCode(nil), p.InstitutionCodes...),
			Children:         append([]domain.ProfileChild(nil), p.Children...),
		})
	}
	return out, nil
}

func (s *Session) Guardian() domain.Guardian {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guardian
}

func (s *Session) Endpoint() domain.APIEndpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// CSRFToken returns the value of the Csrfp-Token cookie for the API host.
func (s *Session) CSRFToken() string {
	client, endpoint := s.current()
	if client == nil || client.Jar == nil {
		return ""
	}
	u, err := url.Parse(endpoint.URL())
	if err != nil {
		return ""
	}
	for _, cookie := range client.Jar.Cookies(u) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

func (s *Session) current() (*http.Client, domain.APIEndpoint) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client, s.endpoint
}

type page struct {
	url  *url.URL
	body []byte
}

func (s *Session) fetchPage(ctx context.Context, client *http.Client, method string, rawURL string, form url.Values) (page, error) {
	requestCtx, cancel := s.requestContext(ctx)
	defer cancel()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(requestCtx, method, rawURL, body)
	if err != nil {
		return page{}, fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return page{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return page{}, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return page{url: resp.Request.URL, body: data}, nil
}

func (s *Session) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := s.cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "da,en-US;q=0.7,en;q=0.3")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// sameURL compares two URLs with default ports normalised away.
func sameURL(a *url.URL, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(hostWithoutDefaultPort(a), hostWithoutDefaultPort(b)) &&
		a.EscapedPath() == b.EscapedPath() &&
		a.RawQuery == b.RawQuery
}

func hostWithoutDefaultPort(u *url.URL) string {
	port := u.Port()
	if port == "" ||
		(strings.EqualFold(u.Scheme, "https") && port == "443") ||
		(strings.EqualFold(u.Scheme, "http") && port == "80") {
		return u.Hostname()
	}
	return u.Host
}
