package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/hashicorp/go-hclog"
)

const (
	DefaultAPIBase      = "https://www.aula.dk/api/v"
	DefaultStartVersion = 20
	DefaultMaxProbes    = 20

	probeMethod = "?method=profiles.getProfilesByLogin"
)

// ProbeFunc performs an authenticated GET and returns the status and body.
type ProbeFunc func(ctx context.Context, rawURL string) (int, []byte, error)

// VersionResolver walks API versions upwards until the portal stops
// answering 410 Gone.
type VersionResolver struct {
	Base         string
	StartVersion int
	MaxProbes    int
	Logger       hclog.Logger
}

func (r VersionResolver) Resolve(ctx context.Context, probe ProbeFunc) (domain.APIEndpoint, []domain.GuardianProfile, error) {
	base := r.Base
	if base == "" {
		base = DefaultAPIBase
	}
	version := r.StartVersion
	if version <= 0 {
		version = DefaultStartVersion
	}
	maxProbes := r.MaxProbes
	if maxProbes <= 0 {
		maxProbes = DefaultMaxProbes
	}
	logger := r.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	for attempt := 0; attempt < maxProbes; attempt++ {
		endpoint := domain.APIEndpoint{Base: base, Version: version}
		logger.Debug("probing api version", "url", endpoint.URL())

		status, body, err := probe(ctx, endpoint.URL()+probeMethod)
		if err != nil {
			return domain.APIEndpoint{}, nil, fmt.Errorf("probe api v%d: %w", version, err)
		}

		switch status {
		case http.StatusGone:
			logger.Debug("api version gone, trying next", "version", version)
			version++
		case http.StatusForbidden:
			return domain.APIEndpoint{}, nil, domain.ErrAuthenticationDenied
		case http.StatusOK:
			profiles, err := decodeProfiles(body)
			if err != nil {
				return domain.APIEndpoint{}, nil, err
			}
			logger.Info("resolved api version", "version", version)
			return endpoint, profiles, nil
		default:
			return domain.APIEndpoint{}, nil, fmt.Errorf("probe api v%d: %w: %d", version, domain.ErrUnexpectedStatus, status)
		}
	}

	return domain.APIEndpoint{}, nil, fmt.Errorf("%w: gave up after %d probes starting at v%d", domain.ErrAPIVersionNotFound, maxProbes, r.startOrDefault())
}

func (r VersionResolver) startOrDefault() int {
	if r.StartVersion <= 0 {
		return DefaultStartVersion
	}
	return r.StartVersion
}

func decodeProfiles(body []byte) ([]domain.GuardianProfile, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode profiles: %w: %v", domain.ErrMalformedResponse, err)
	}
	var data profilesData
	if err := env.decodeData(&data); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return data.toDomain(), nil
}
