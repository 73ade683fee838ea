package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
)

// Portal is the authenticated session against the Aula API. Implementations
// own the cookie jar and the resolved API endpoint.
type Portal interface {
	// EnsureAuthenticated reports whether a fresh login was needed.
	EnsureAuthenticated(ctx context.Context) (bool, error)
	GuardianProfiles(ctx context.Context) ([]domain.GuardianProfile, error)
	Guardian() domain.Guardian
	Widgets(ctx context.Context) (domain.WidgetSet, error)
	DailyOverview(ctx context.Context, child domain.ChildID) ([]domain.PresenceRecord, error)
	Threads(ctx context.Context) ([]domain.ThreadSummary, error)
	ThreadMessages(ctx context.Context, id domain.ThreadID) (domain.Thread, error)
	CalendarEvents(ctx context.Context, children []domain.ChildID, start time.Time, end time.Time) ([]byte, error)
	CSRFToken() string
	Endpoint() domain.APIEndpoint
	Call(ctx context.Context, path string, body json.RawMessage) (domain.RawResponse, error)
}

type TokenIssuer interface {
	IssueWidgetToken(ctx context.Context, widget domain.WidgetID) (string, error)
}

// SourceAdapter turns one vendor widget's response into per-child plan
// content for a single week.
type SourceAdapter interface {
	WidgetID() domain.WidgetID
	Fetch(ctx context.Context, req domain.PlanRequest) (domain.PlanBatch, error)
}

type LessonSnapshotStore interface {
	Save(ctx context.Context, raw []byte) error
	Load(ctx context.Context) ([]byte, error)
}
