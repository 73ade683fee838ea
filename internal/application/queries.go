package application

import (
	"time"

	"github.com/bnema/aula-cli/internal/domain"
)

// Snapshot is the immutable result of one refresh. Readers always receive
// a deep copy.
type Snapshot struct {
	RefreshID   string
	RefreshedAt time.Time
	Endpoint    domain.APIEndpoint
	Guardian    domain.Guardian
	Roster      domain.Roster
	Presence    map[domain.ChildID]domain.Presence
	Message     domain.MessageSummary
	Widgets     domain.WidgetSet
	// Plans is nil when week plans are disabled.
	Plans *domain.WeekPlans
	// CalendarSavedAt is zero when no calendar snapshot was written this cycle.
	CalendarSavedAt time.Time
}

func (s Snapshot) Clone() Snapshot {
	out := s
	out.Roster = s.Roster.Clone()
	out.Widgets = s.Widgets.Clone()
	if s.Presence != nil {
		out.Presence = make(map[domain.ChildID]domain.Presence, len(s.Presence))
		for id, p := range s.Presence {
			if p.Record.ProfilePictureURL != nil {
				url := *p.Record.ProfilePictureURL
				p.Record.ProfilePictureURL = &url
			}
			out.Presence[id] = p
		}
	}
	if s.Plans != nil {
		plans := s.Plans.Clone()
		out.Plans = &plans
	}
	return out
}

// PresenceOf returns the child's presence, or the no-data sentinel.
func (s Snapshot) PresenceOf(id domain.ChildID) domain.Presence {
	if p, ok := s.Presence[id]; ok {
		return p
	}
	return domain.NoPresenceData
}

// ChildPlan is one child's week plan as shown by the plan command.
type ChildPlan struct {
	Child    domain.Child
	Week     domain.Week
	Content  domain.PlanContent
	Found    bool
	Reminder string
}
