package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/bnema/aula-cli/internal/ports"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const calendarWindow = 14 * 24 * time.Hour

type ServiceConfig struct {
	Portal   ports.Portal
	Tokens   ports.TokenIssuer
	Adapters []ports.SourceAdapter
	Lessons  ports.LessonSnapshotStore
	Clock    ports.Clock
	Logger   hclog.Logger
	Features Features
}

// Service runs refresh cycles against the portal and publishes snapshots.
type Service struct {
	portal   ports.Portal
	tokens   *TokenCache
	plans    *WeekPlanAggregator
	lessons  ports.LessonSnapshotStore
	clock    ports.Clock
	logger   hclog.Logger
	features Features

	refreshMu sync.Mutex
	// widgets is only touched while refreshMu is held.
	widgets  domain.WidgetSet
	snapshot atomic.Pointer[Snapshot]
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	tokens := NewTokenCache(cfg.Tokens, cfg.Clock, cfg.Logger.Named("tokens"))
	return &Service{
		portal:   cfg.Portal,
		tokens:   tokens,
		plans:    NewWeekPlanAggregator(tokens, cfg.Logger.Named("weekplan"), cfg.Adapters...),
		lessons:  cfg.Lessons,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		features: cfg.Features,
	}
}

// Refresh runs one full cycle. Authentication and roster failures abort the
// cycle and leave the previous snapshot in place; every other step degrades.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	if !s.refreshMu.TryLock() {
		return Snapshot{}, domain.ErrRefreshInProgress
	}
	defer s.refreshMu.Unlock()

	refreshID := uuid.NewString()
	logger := s.logger.With("refresh", refreshID)
	started := s.clock.Now()
	logger.Debug("refresh started")

	fresh, err := s.portal.EnsureAuthenticated(ctx)
	if err != nil {
		logger.Error("authentication failed", "error", err)
		return Snapshot{}, fmt.Errorf("authenticate: %w", err)
	}
	if fresh {
		s.tokens.Invalidate()
	}

	profiles, err := s.portal.GuardianProfiles(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load profiles: %w", err)
	}
	roster, err := BuildRoster(profiles)
	if err != nil {
		logger.Error("roster rebuild failed", "error", err)
		return Snapshot{}, fmt.Errorf("build roster: %w", err)
	}
	for _, name := range roster.DuplicateFirstNames() {
		logger.Warn("children share a first name, their week plans overwrite each other", "first_name", name)
	}

	snapshot := Snapshot{
		RefreshID:   refreshID,
		RefreshedAt: started,
		Endpoint:    s.portal.Endpoint(),
		Guardian:    s.portal.Guardian(),
		Roster:      roster,
		Presence:    s.fetchPresence(ctx, logger, roster),
	}

	message, err := s.fetchMessage(ctx)
	if err != nil {
		logger.Warn("messages unavailable", "error", err)
		if previous := s.snapshot.Load(); previous != nil {
			message = previous.Message
		}
	}
	snapshot.Message = message

	if s.features.SchoolSchedule {
		if s.saveCalendar(ctx, logger, roster, started) {
			snapshot.CalendarSavedAt = s.clock.Now()
		}
	}

	if s.features.WeekPlans {
		widgets := s.discoverWidgets(ctx, logger)
		plans := s.plans.Aggregate(ctx, widgets, domain.PlanRequest{
			CSRFToken: s.portal.CSRFToken(),
			Guardian:  snapshot.Guardian,
			Roster:    roster,
			Now:       started,
		})
		snapshot.Widgets = widgets.Clone()
		snapshot.Plans = &plans
	}

	s.snapshot.Store(&snapshot)
	logger.Info("refresh completed",
		"children", len(roster.Children),
		"unread", snapshot.Message.Unread,
		"elapsed", s.clock.Now().Sub(started).Round(time.Millisecond))

	return snapshot.Clone(), nil
}

// Snapshot returns a copy of the last published snapshot.
func (s *Service) Snapshot() (Snapshot, error) {
	current := s.snapshot.Load()
	if current == nil {
		return Snapshot{}, domain.ErrNotRefreshed
	}
	return current.Clone(), nil
}

func (s *Service) fetchPresence(ctx context.Context, logger hclog.Logger, roster domain.Roster) map[domain.ChildID]domain.Presence {
	presence := make(map[domain.ChildID]domain.Presence, len(roster.Children))
	for _, child := range roster.Children {
		records, err := s.portal.DailyOverview(ctx, child.ID)
		if err != nil {
			logger.Warn("presence unavailable", "child", child.ID, "error", err)
			continue
		}
		if len(records) == 0 {
			logger.Debug("no presence data for child", "child", child.ID)
			presence[child.ID] = domain.NoPresenceData
			continue
		}
		presence[child.ID] = domain.Presence{Record: records[0], HasData: true}
	}
	return presence
}

// fetchMessage reports the newest unread thread only.
func (s *Service) fetchMessage(ctx context.Context) (domain.MessageSummary, error) {
	threads, err := s.portal.Threads(ctx)
	if err != nil {
		return domain.NoUnreadMessages, err
	}

	var unread *domain.ThreadSummary
	for i := range threads {
		if !threads[i].Read {
			unread = &threads[i]
			break
		}
	}
	if unread == nil {
		return domain.NoUnreadMessages, nil
	}

	thread, err := s.portal.ThreadMessages(ctx, unread.ID)
	if err != nil {
		return domain.NoUnreadMessages, err
	}
	if thread.Sensitive {
		return domain.SensitiveMessage, nil
	}
	for _, msg := range thread.Messages {
		if msg.Type != domain.MessageTypeStandard {
			continue
		}
		return domain.MessageSummary{
			Unread:  true,
			Subject: thread.Subject,
			Sender:  msg.Sender,
			Text:    msg.Text,
		}, nil
	}
	return domain.NoUnreadMessages, nil
}

func (s *Service) saveCalendar(ctx context.Context, logger hclog.Logger, roster domain.Roster, now time.Time) bool {
	if s.lessons == nil {
		logger.Warn("school schedule enabled without a snapshot store")
		return false
	}

	day := now.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	raw, err := s.portal.CalendarEvents(ctx, roster.ChildIDs(), start, start.Add(calendarWindow))
	if err != nil {
		logger.Warn("calendar fetch failed", "error", err)
		return false
	}
	if err := s.lessons.Save(ctx, raw); err != nil {
		logger.Warn("calendar snapshot not written", "error", err)
		return false
	}
	return true
}

// discoverWidgets asks the portal once per service lifetime, retrying on
// later refreshes while nothing was found.
func (s *Service) discoverWidgets(ctx context.Context, logger hclog.Logger) domain.WidgetSet {
	if len(s.widgets) > 0 {
		return s.widgets
	}
	widgets, err := s.portal.Widgets(ctx)
	if err != nil {
		logger.Warn("widget discovery failed", "error", err)
		return domain.WidgetSet{}
	}
	logger.Debug("widgets discovered", "widgets", widgets.IDs())
	s.widgets = widgets
	return widgets
}

// CalendarEvents returns a child's lessons from the calendar snapshot plus
// any structured EasyIQ events from the current and next week.
func (s *Service) CalendarEvents(ctx context.Context, childKey string) ([]domain.CalendarEvent, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	child, ok := snapshot.Roster.FindChild(childKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrChildNotFound, childKey)
	}

	var events []domain.CalendarEvent
	if s.lessons != nil {
		events = append(events, s.loadLessons(ctx, child.ID)...)
	}

	if snapshot.Plans != nil {
		for _, plans := range []map[domain.FirstName]domain.PlanContent{snapshot.Plans.ThisWeek, snapshot.Plans.NextWeek} {
			if content, ok := plans[child.FirstName]; ok && content.Structured() {
				events = append(events, PlanEvents(content)...)
			}
		}
	}

	domain.SortEvents(events)
	return events, nil
}

func (s *Service) loadLessons(ctx context.Context, child domain.ChildID) []domain.CalendarEvent {
	raw, err := s.lessons.Load(ctx)
	if err != nil {
		s.logger.Debug("no calendar snapshot", "error", err)
		return nil
	}
	lessons, err := ParseLessons(raw, child)
	if err != nil {
		s.logger.Warn("calendar snapshot unreadable", "error", err)
		return nil
	}
	return lessons
}

// ChildPlans returns the week plan per child for the current or next week,
// optionally limited to one child.
func (s *Service) ChildPlans(childKey string, next bool) ([]ChildPlan, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	if snapshot.Plans == nil {
		return nil, errors.New("week plans are disabled")
	}

	children := snapshot.Roster.Children
	if strings.TrimSpace(childKey) != "" {
		child, ok := snapshot.Roster.FindChild(childKey)
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrChildNotFound, childKey)
		}
		children = []domain.Child{child}
	}

	week := snapshot.Plans.Current
	if next {
		week = snapshot.Plans.Next
	}
	source := snapshot.Plans.ForWeek(next)

	out := make([]ChildPlan, 0, len(children))
	for _, child := range children {
		content, found := source[child.FirstName]
		out = append(out, ChildPlan{
			Child:    child,
			Week:     week,
			Content:  content,
			Found:    found,
			Reminder: snapshot.Plans.Reminders[child.FirstName],
		})
	}
	return out, nil
}

// Call forwards a raw API request. The body is validated before anything
// goes on the wire.
func (s *Service) Call(ctx context.Context, cmd CallCommand) (domain.RawResponse, error) {
	if cmd.Body != nil && !json.Valid(cmd.Body) {
		return domain.RawResponse{}, fmt.Errorf("%w: body is not valid json", domain.ErrInvalidRequest)
	}
	fresh, err := s.portal.EnsureAuthenticated(ctx)
	if err != nil {
		return domain.RawResponse{}, fmt.Errorf("authenticate: %w", err)
	}
	if fresh {
		s.tokens.Invalidate()
	}
	return s.portal.Call(ctx, cmd.Path, cmd.Body)
}
