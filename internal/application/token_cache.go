package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/bnema/aula-cli/internal/ports"
	"github.com/hashicorp/go-hclog"
)

const bearerPrefix = "Bearer "

// TokenCache hands out per-widget bearer tokens, reissuing them once they
// are a minute old.
type TokenCache struct {
	issuer ports.TokenIssuer
	clock  ports.Clock
	logger hclog.Logger

	mu     sync.Mutex
	tokens map[domain.WidgetID]domain.Token
}

func NewTokenCache(issuer ports.TokenIssuer, clock ports.Clock, logger hclog.Logger) *TokenCache {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &TokenCache{
		issuer: issuer,
		clock:  clock,
		logger: logger,
		tokens: map[domain.WidgetID]domain.Token{},
	}
}

func (c *TokenCache) Get(ctx context.Context, widget domain.WidgetID) (domain.Token, error) {
	now := c.clock.Now()

	c.mu.Lock()
	cached, ok := c.tokens[widget]
	c.mu.Unlock()
	if ok && cached.Valid(now) {
		c.logger.Trace("reusing widget token", "widget", widget)
		return cached, nil
	}

	c.logger.Debug("requesting widget token", "widget", widget)
	raw, err := c.issuer.IssueWidgetToken(ctx, widget)
	if err != nil {
		return domain.Token{}, fmt.Errorf("issue token for widget %s: %w", widget, err)
	}

	// Stamped with the pre-request time.
	token := domain.Token{Value: bearerPrefix + raw, IssuedAt: now}
	c.mu.Lock()
	c.tokens[widget] = token
	c.mu.Unlock()

	return token, nil
}

// Invalidate drops every cached token. Tokens belong to a login.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = map[domain.WidgetID]domain.Token{}
}
