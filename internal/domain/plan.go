package domain

import "time"

// PlanContent is what one source adapter produced for one child and week.
// Free-form adapters fill HTML; the EasyIQ structured mode fills Events and
// WeekPlan instead.
type PlanContent struct {
	Widget   WidgetID
	HTML     string
	Events   []PlanEvent
	WeekPlan *PlanSummary
	From     *time.Time
	To       *time.Time
}

func (c PlanContent) Structured() bool {
	return c.Events != nil || c.WeekPlan != nil
}

func (c PlanContent) Empty() bool {
	return c.HTML == "" && len(c.Events) == 0 && c.WeekPlan == nil
}

type PlanEvent struct {
	Start       time.Time
	End         time.Time
	Title       string
	Owner       string
	ItemType    string
	Description string
	Course      string
	Activity    string
}

type PlanSummary struct {
	ActivityName string
	Year         int
	WeekNumber   int
	Text         string
}

// PlanBatch is the per-child output of one adapter call.
type PlanBatch map[FirstName]PlanContent

type PlanRequest struct {
	Week      Week
	Token     string
	CSRFToken string
	Guardian  Guardian
	Roster    Roster
	Now       time.Time
}

// WeekPlans holds the current and next week, keyed by child first name.
type WeekPlans struct {
	Current   Week
	Next      Week
	ThisWeek  map[FirstName]PlanContent
	NextWeek  map[FirstName]PlanContent
	Reminders map[FirstName]string
}

func NewWeekPlans(current Week) WeekPlans {
	return WeekPlans{
		Current:   current,
		Next:      current.Next(),
		ThisWeek:  map[FirstName]PlanContent{},
		NextWeek:  map[FirstName]PlanContent{},
		Reminders: map[FirstName]string{},
	}
}

func (p WeekPlans) ForWeek(next bool) map[FirstName]PlanContent {
	if next {
		return p.NextWeek
	}
	return p.ThisWeek
}

func (p WeekPlans) Clone() WeekPlans {
	out := p
	out.ThisWeek = clonePlans(p.ThisWeek)
	out.NextWeek = clonePlans(p.NextWeek)
	if p.Reminders != nil {
		out.Reminders = make(map[FirstName]string, len(p.Reminders))
		for name, text := range p.Reminders {
			out.Reminders[name] = text
		}
	}
	return out
}

func clonePlans(in map[FirstName]PlanContent) map[FirstName]PlanContent {
	if in == nil {
		return nil
	}
	out := make(map[FirstName]PlanContent, len(in))
	for name, content := range in {
		if content.Events != nil {
			events := make([]PlanEvent, len(content.Events))
			copy(events, content.Events)
			content.Events = events
		}
		out[name] = content
	}
	return out
}
