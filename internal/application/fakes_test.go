package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// fakePortal is an in-memory portal with call counters.
type fakePortal struct {
	mu sync.Mutex

	authErr   error
	fresh     bool
	authGate  chan struct{}
	profiles  []domain.GuardianProfile
	guardian  domain.Guardian
	widgets   domain.WidgetSet
	presence  map[domain.ChildID][]domain.PresenceRecord
	threads   []domain.ThreadSummary
	thread    map[domain.ThreadID]domain.Thread
	calendar  []byte
	csrf      string
	tokens    map[domain.WidgetID]string
	responses map[string]domain.RawResponse

	authCalls     atomic.Int32
	threadCalls   atomic.Int32
	widgetCalls   atomic.Int32
	calendarCalls atomic.Int32
	rawCalls      atomic.Int32
	tokenCalls    atomic.Int32
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		profiles: []domain.GuardianProfile{{
			InstitutionCodes: []domain.InstitutionCode{"280001"},
			Children: []domain.ProfileChild{
				{ID: "101", UserID: "anna01", Name: "Anna Jensen", InstitutionCode: "280001", InstitutionName: "Holme Skole"},
				{ID: "102", UserID: "bo02", Name: "Bo Jensen", InstitutionCode: "280001", InstitutionName: "Holme Skole"},
			},
		}},
		guardian:  domain.Guardian{UserID: "4242", Username: "jdoe"},
		presence:  map[domain.ChildID][]domain.PresenceRecord{},
		thread:    map[domain.ThreadID]domain.Thread{},
		csrf:      "csrf-123",
		tokens:    map[domain.WidgetID]string{},
		responses: map[string]domain.RawResponse{},
	}
}

func (p *fakePortal) EnsureAuthenticated(ctx context.Context) (bool, error) {
	p.authCalls.Add(1)
	if p.authGate != nil {
		select {
		case <-p.authGate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fresh, p.authErr
}

func (p *fakePortal) GuardianProfiles(context.Context) ([]domain.GuardianProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profiles, nil
}

func (p *fakePortal) Guardian() domain.Guardian {
	return p.guardian
}

func (p *fakePortal) Widgets(context.Context) (domain.WidgetSet, error) {
	p.widgetCalls.Add(1)
	return p.widgets.Clone(), nil
}

func (p *fakePortal) DailyOverview(_ context.Context, child domain.ChildID) ([]domain.PresenceRecord, error) {
	records, ok := p.presence[child]
	if !ok {
		return nil, errors.New("overview unavailable")
	}
	return records, nil
}

func (p *fakePortal) Threads(context.Context) ([]domain.ThreadSummary, error) {
	return p.threads, nil
}

func (p *fakePortal) ThreadMessages(_ context.Context, id domain.ThreadID) (domain.Thread, error) {
	p.threadCalls.Add(1)
	thread, ok := p.thread[id]
	if !ok {
		return domain.Thread{}, errors.New("thread not found")
	}
	return thread, nil
}

func (p *fakePortal) CalendarEvents(context.Context, []domain.ChildID, time.Time, time.Time) ([]byte, error) {
	p.calendarCalls.Add(1)
	if p.calendar == nil {
		return nil, errors.New("calendar unavailable")
	}
	return p.calendar, nil
}

func (p *fakePortal) CSRFToken() string {
	return p.csrf
}

func (p *fakePortal) Endpoint() domain.APIEndpoint {
	return domain.APIEndpoint{Base: "https://www.aula.dk/api/v", Version: 22}
}

func (p *fakePortal) Call(_ context.Context, path string, _ json.RawMessage) (domain.RawResponse, error) {
	p.rawCalls.Add(1)
	return p.responses[path], nil
}

func (p *fakePortal) IssueWidgetToken(_ context.Context, widget domain.WidgetID) (string, error) {
	p.tokenCalls.Add(1)
	token, ok := p.tokens[widget]
	if !ok {
		return "token-" + string(widget), nil
	}
	return token, nil
}

// fakeAdapter returns a fixed batch per week.
type fakeAdapter struct {
	id      domain.WidgetID
	batches map[domain.Week]domain.PlanBatch
	err     error

	mu       sync.Mutex
	requests []domain.PlanRequest
}

func (a *fakeAdapter) WidgetID() domain.WidgetID {
	return a.id
}

func (a *fakeAdapter) Fetch(_ context.Context, req domain.PlanRequest) (domain.PlanBatch, error) {
	a.mu.Lock()
	a.requests = append(a.requests, req)
	a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return a.batches[req.Week], nil
}

func (a *fakeAdapter) calls() []domain.PlanRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.PlanRequest(nil), a.requests...)
}

type memoryLessons struct {
	mu  sync.Mutex
	raw []byte
}

func (m *memoryLessons) Save(_ context.Context, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append([]byte(nil), raw...)
	return nil
}

func (m *memoryLessons) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return nil, errors.New("no snapshot")
	}
	return m.raw, nil
}
