package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/bnema/aula-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var refreshNow = time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC)

func newTestService(portal *fakePortal, features Features, adapters ...*fakeAdapter) (*Service, *memoryLessons) {
	lessons := &memoryLessons{}
	cfg := ServiceConfig{
		Portal:   portal,
		Tokens:   portal,
		Lessons:  lessons,
		Clock:    fixedClock{now: refreshNow},
		Features: features,
	}
	for _, adapter := range adapters {
		cfg.Adapters = append(cfg.Adapters, adapter)
	}
	return NewService(cfg), lessons
}

func TestRefreshPresenceDistinguishesNoDataFromData(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	portal.presence["101"] = []domain.PresenceRecord{{Status: domain.PresenceArrived, CheckInTime: "07:45"}}
	portal.presence["102"] = nil
	service, _ := newTestService(portal, Features{})

	snapshot, err := service.Refresh(context.Background())
	require.NoError(t, err)

	anna := snapshot.PresenceOf("101")
	assert.True(t, anna.HasData)
	assert.Equal(t, "Kommet/Til stede", anna.Label())
	assert.Equal(t, "07:45", anna.Record.CheckInTime)

	bo := snapshot.PresenceOf("102")
	assert.False(t, bo.HasData)
	assert.Equal(t, "n/a", bo.Label())
}

func TestRefreshOmitsChildWhenPresenceFails(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	portal.presence["101"] = []domain.PresenceRecord{{Status: domain.PresenceSick}}
	service, _ := newTestService(portal, Features{})

	snapshot, err := service.Refresh(context.Background())
	require.NoError(t, err)

	assert.Contains(t, snapshot.Presence, domain.ChildID("101"))
	assert.NotContains(t, snapshot.Presence, domain.ChildID("102"))
}

func TestRefreshMessages(t *testing.T) {
	tests := []struct {
		name        string
		threads     []domain.ThreadSummary
		thread      map[domain.ThreadID]domain.Thread
		want        domain.MessageSummary
		threadCalls int32
	}{
		{
			name:        "no unread skips thread fetch",
			threads:     []domain.ThreadSummary{{ID: "1", Read: true}, {ID: "2", Read: true}},
			want:        domain.NoUnreadMessages,
			threadCalls: 0,
		},
		{
			name:    "first unread message",
			threads: []domain.ThreadSummary{{ID: "1", Read: true}, {ID: "2"}, {ID: "3"}},
			thread: map[domain.ThreadID]domain.Thread{"2": {Subject: "Udflugt", Messages: []domain.ThreadMessage{
				{Type: "RecipientsAdded", Text: domain.EmptyMessageText, Sender: domain.UnknownSender},
				{Type: "Message", Text: "<p>Husk madpakke</p>", Sender: "Lærer Lise"},
			}}},
			want:        domain.MessageSummary{Unread: true, Subject: "Udflugt", Sender: "Lærer Lise", Text: "<p>Husk madpakke</p>"},
			threadCalls: 1,
		},
		{
			name:        "sensitive thread",
			threads:     []domain.ThreadSummary{{ID: "7"}},
			thread:      map[domain.ThreadID]domain.Thread{"7": {Sensitive: true}},
			want:        domain.SensitiveMessage,
			threadCalls: 1,
		},
		{
			name:        "thread without standard messages",
			threads:     []domain.ThreadSummary{{ID: "8"}},
			thread:      map[domain.ThreadID]domain.Thread{"8": {Messages: []domain.ThreadMessage{{Type: "MessageDeleted"}}}},
			want:        domain.NoUnreadMessages,
			threadCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			portal := newFakePortal()
			portal.threads = tt.threads
			if tt.thread != nil {
				portal.thread = tt.thread
			}
			service, _ := newTestService(portal, Features{})

			snapshot, err := service.Refresh(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, snapshot.Message)
			assert.Equal(t, tt.threadCalls, portal.threadCalls.Load())
		})
	}
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	service, _ := newTestService(portal, Features{})

	first, err := service.Refresh(context.Background())
	require.NoError(t, err)

	portal.mu.Lock()
	portal.authErr = &domain.LoginError{URL: "https://broker.unilogin.dk/step", Attempts: 10, Err: domain.ErrRedirectLimit}
	portal.mu.Unlock()

	_, err = service.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrLoginFailed)

	current, err := service.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, first.RefreshID, current.RefreshID)
}

func TestRefreshRejectsMalformedRoster(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	portal.profiles[0].Children[1].UserID = ""
	service, _ := newTestService(portal, Features{})

	_, err := service.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)

	_, err = service.Snapshot()
	assert.ErrorIs(t, err, domain.ErrNotRefreshed)
}

func TestRefreshRejectsConcurrentCall(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	portal.authGate = make(chan struct{})
	service, _ := newTestService(portal, Features{})

	done := make(chan error, 1)
	go func() {
		_, err := service.Refresh(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return portal.authCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	_, err := service.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrRefreshInProgress)

	close(portal.authGate)
	require.NoError(t, <-done)
}

func TestRefreshSavesCalendarAndServesLessons(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	portal.calendar = []byte(lessonFixture)
	service, lessons := newTestService(portal, Features{SchoolSchedule: true})

	snapshot, err := service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, refreshNow, snapshot.CalendarSavedAt)
	assert.JSONEq(t, lessonFixture, string(lessons.raw))

	events, err := service.CalendarEvents(context.Background(), "anna")
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "Matematik, LIS", events[0].Summary)

	_, err = service.CalendarEvents(context.Background(), "Karla")
	assert.ErrorIs(t, err, domain.ErrChildNotFound)
}

func TestRefreshCalendarFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	service, _ := newTestService(portal, Features{SchoolSchedule: true})

	snapshot, err := service.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, snapshot.CalendarSavedAt.IsZero())
	assert.Equal(t, int32(1), portal.calendarCalls.Load())

	events, err := service.CalendarEvents(context.Background(), "Anna")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRefreshSnapshotStoreFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	portal.calendar = []byte(lessonFixture)
	lessons := mocks.NewMockLessonSnapshotStore(t)
	lessons.EXPECT().Save(mock.Anything, []byte(lessonFixture)).Return(errors.New("disk full")).Once()
	lessons.EXPECT().Load(mock.Anything).Return(nil, errors.New("no snapshot")).Once()

	service := NewService(ServiceConfig{
		Portal:   portal,
		Tokens:   portal,
		Lessons:  lessons,
		Clock:    fixedClock{now: refreshNow},
		Features: Features{SchoolSchedule: true},
	})

	snapshot, err := service.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, snapshot.CalendarSavedAt.IsZero())
	assert.Len(t, snapshot.Roster.Children, 2)

	events, err := service.CalendarEvents(context.Background(), "Anna")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRefreshReplacesWeekPlansInFull(t *testing.T) {
	t.Parallel()

	current := domain.WeekOf(refreshNow)
	portal := newFakePortal()
	portal.widgets = domain.WidgetSet{"0030": "Opgaver"}
	taskList := &fakeAdapter{id: domain.WidgetTaskList, batches: map[domain.Week]domain.PlanBatch{
		current:        {"Anna": {HTML: "<h2>Læs side 4</h2>"}, "Bo": {HTML: "<h2>Regn opgave 2</h2>"}},
		current.Next(): {"Bo": {HTML: "<h2>Tegn et kort</h2>"}},
	}}
	service, _ := newTestService(portal, Features{WeekPlans: true}, taskList)

	first, err := service.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first.Plans)
	assert.Contains(t, first.Plans.ThisWeek, domain.FirstName("Bo"))
	assert.Contains(t, first.Plans.NextWeek, domain.FirstName("Bo"))

	taskList.batches = map[domain.Week]domain.PlanBatch{
		current: {"Anna": {HTML: "<h2>Læs side 5</h2>"}},
	}

	second, err := service.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second.Plans)
	assert.Equal(t, "<h2>Læs side 5</h2>", second.Plans.ThisWeek["Anna"].HTML)
	assert.NotContains(t, second.Plans.ThisWeek, domain.FirstName("Bo"))
	assert.Empty(t, second.Plans.NextWeek)
}

func TestRefreshWeekPlansDiscoversWidgetsOnce(t *testing.T) {
	t.Parallel()

	current := domain.WeekOf(refreshNow)
	portal := newFakePortal()
	portal.widgets = domain.WidgetSet{"0030": "Opgaver"}
	taskList := &fakeAdapter{id: domain.WidgetTaskList, batches: map[domain.Week]domain.PlanBatch{
		current: {"Anna": {HTML: "<h2>Læs side 4</h2>"}, "Bo": {HTML: ""}},
	}}
	service, _ := newTestService(portal, Features{WeekPlans: true}, taskList)

	_, err := service.Refresh(context.Background())
	require.NoError(t, err)
	snapshot, err := service.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), portal.widgetCalls.Load())
	require.NotNil(t, snapshot.Plans)
	assert.Equal(t, domain.WidgetSet{"0030": "Opgaver"}, snapshot.Widgets)

	bo, ok := snapshot.Plans.ThisWeek["Bo"]
	require.True(t, ok)
	assert.Empty(t, bo.HTML)

	req := taskList.calls()[0]
	assert.Equal(t, "csrf-123", req.CSRFToken)
	assert.Equal(t, "4242", req.Guardian.UserID)
	assert.Equal(t, []domain.ChildUserID{"anna01", "bo02"}, req.Roster.UserIDs())

	plans, err := service.ChildPlans("bo", false)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, plans[0].Found)
	assert.Equal(t, current, plans[0].Week)
}

func TestRefreshRetriesWidgetDiscoveryWhileEmpty(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	service, _ := newTestService(portal, Features{WeekPlans: true})

	_, err := service.Refresh(context.Background())
	require.NoError(t, err)
	_, err = service.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), portal.widgetCalls.Load())
}

func TestCalendarEventsIncludesStructuredEasyIQEvents(t *testing.T) {
	t.Parallel()

	current := domain.WeekOf(refreshNow)
	start := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)
	portal := newFakePortal()
	portal.widgets = domain.WidgetSet{"0001": "EasyIQ"}
	easyIQ := &fakeAdapter{id: domain.WidgetEasyIQ, batches: map[domain.Week]domain.PlanBatch{
		current: {"Anna": {Events: []domain.PlanEvent{{Start: start, End: start.Add(45 * time.Minute), Course: "Matematik", Activity: "Brøker"}}}},
	}}
	service, _ := newTestService(portal, Features{WeekPlans: true}, easyIQ)

	_, err := service.Refresh(context.Background())
	require.NoError(t, err)

	events, err := service.CalendarEvents(context.Background(), "Anna")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Matematik - Brøker", events[0].Summary)
}

func TestSnapshotIsCopyOnRead(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	portal.presence["101"] = []domain.PresenceRecord{{Status: domain.PresenceArrived}}
	service, _ := newTestService(portal, Features{})

	_, err := service.Refresh(context.Background())
	require.NoError(t, err)

	first, err := service.Snapshot()
	require.NoError(t, err)
	first.Roster.Children[0].Name = "changed"
	delete(first.Presence, "101")

	second, err := service.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Anna Jensen", second.Roster.Children[0].Name)
	assert.Contains(t, second.Presence, domain.ChildID("101"))
}

func TestCallRejectsInvalidJSONBeforeAuthenticating(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	service, _ := newTestService(portal, Features{})

	_, err := service.Call(context.Background(), CallCommand{Path: "?method=x", Body: json.RawMessage(`{nope`)})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Equal(t, int32(0), portal.authCalls.Load())
	assert.Equal(t, int32(0), portal.rawCalls.Load())
}

func TestCallForwardsToPortal(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	portal.responses["?method=notifications.getNotifications"] = domain.RawResponse{StatusCode: 200, Body: `{"data":[]}`}
	service, _ := newTestService(portal, Features{})

	resp, err := service.Call(context.Background(), CallCommand{Path: "?method=notifications.getNotifications"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, int32(1), portal.rawCalls.Load())
}

func TestFreshLoginInvalidatesTokens(t *testing.T) {
	t.Parallel()

	portal := newFakePortal()
	portal.widgets = domain.WidgetSet{"0030": "Opgaver"}
	service, _ := newTestService(portal, Features{WeekPlans: true}, &fakeAdapter{id: domain.WidgetTaskList})

	_, err := service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), portal.tokenCalls.Load())

	portal.mu.Lock()
	portal.fresh = true
	portal.mu.Unlock()
	_, err = service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), portal.tokenCalls.Load())
}

func TestChildPlansRequiresRefresh(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(newFakePortal(), Features{WeekPlans: true})
	_, err := service.ChildPlans("", false)
	assert.True(t, errors.Is(err, domain.ErrNotRefreshed))
}
