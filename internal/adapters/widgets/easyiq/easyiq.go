// Package easyiq reads EasyIQ week plans (widget 0001).
package easyiq

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/aula-cli/internal/adapters/widgets"
	"github.com/bnema/aula-cli/internal/domain"
	"github.com/hashicorp/go-hclog"
)

const (
	DefaultBaseURL = "https://api.easyiqcloud.dk/api/aula"

	eventTimeLayout = "2006/01/02 15:04"
	// itemTypeTitled events carry their own title; the others show the owner.
	itemTypeTitled = "5"
)

// WeekPlan posts one request per child. With Structured set the result
// keeps the events for calendar use; otherwise it is an HTML digest.
type WeekPlan struct {
	BaseURL    string
	Client     widgets.Client
	Structured bool
	Location   *time.Location
	Logger     hclog.Logger
}

func New(client widgets.Client, structured bool) *WeekPlan {
	return &WeekPlan{BaseURL: DefaultBaseURL, Client: client, Structured: structured}
}

func (a *WeekPlan) WidgetID() domain.WidgetID { return domain.WidgetEasyIQ }

type requestBody struct {
	SessionID         string   `json:"sessionId"`
	CurrentWeekNumber string   `json:"currentWeekNr"`
	UserProfile       string   `json:"userProfile"`
	InstitutionFilter []string `json:"institutionFilter"`
	ChildFilter       []string `json:"childFilter"`
}

type event struct {
	Start       string       `json:"start"`
	End         string       `json:"end"`
	ItemType    widgets.Text `json:"itemType"`
	Title       widgets.Text `json:"title"`
	OwnerName   widgets.Text `json:"ownername"`
	Description widgets.Text `json:"description"`
	Courses     widgets.Text `json:"courses"`
	Activities  widgets.Text `json:"activities"`
}

type weekPlanInfo struct {
	Events   []event `json:"Events"`
	WeekPlan *struct {
		ActivityName widgets.Text `json:"ActivityName"`
		Year         widgets.Text `json:"Year"`
		WeekNo       widgets.Text `json:"WeekNo"`
		Text         widgets.Text `json:"Text"`
	} `json:"WeekPlan"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

func (a *WeekPlan) Fetch(ctx context.Context, req domain.PlanRequest) (domain.PlanBatch, error) {
	codes := widgets.InstitutionCodes(req.Roster)
	h := http.Header{}
	h.Set("x-aula-institutionfilter", strings.Join(codes, ","))
	h.Set("x-aula-userprofile", "guardian")
	h.Set("Authorization", req.Token)
	h.Set("csrfp-token", req.CSRFToken)

	batch := domain.PlanBatch{}
	for _, child := range req.Roster.Children {
		body := requestBody{
			SessionID:         req.Guardian.UserID,
			CurrentWeekNumber: req.Week.String(),
			UserProfile:       "guardian",
			InstitutionFilter: codes,
			ChildFilter:       []string{string(child.UserID)},
		}

		var info weekPlanInfo
		if err := a.Client.PostJSON(ctx, strings.TrimRight(a.BaseURL, "/")+"/weekplaninfo", h.Clone(), body, &info); err != nil {
			return nil, fmt.Errorf("week plan for %s: %w", child.FirstName, err)
		}

		if a.Structured {
			batch[child.FirstName] = a.structured(info)
		} else {
			batch[child.FirstName] = domain.PlanContent{Widget: domain.WidgetEasyIQ, HTML: a.digest(req.Week, info)}
		}
	}
	return batch, nil
}

func (a *WeekPlan) structured(info weekPlanInfo) domain.PlanContent {
	content := domain.PlanContent{Widget: domain.WidgetEasyIQ, Events: make([]domain.PlanEvent, 0, len(info.Events))}
	for _, e := range info.Events {
		start, end, ok := a.eventTimes(e)
		if !ok {
			continue
		}
		content.Events = append(content.Events, domain.PlanEvent{
			Start:       start,
			End:         end,
			Title:       string(e.Title),
			Owner:       string(e.OwnerName),
			ItemType:    string(e.ItemType),
			Description: string(e.Description),
			Course:      string(e.Courses),
			Activity:    string(e.Activities),
		})
	}
	if info.WeekPlan != nil {
		content.WeekPlan = &domain.PlanSummary{
			ActivityName: string(info.WeekPlan.ActivityName),
			Year:         atoi(info.WeekPlan.Year),
			WeekNumber:   atoi(info.WeekPlan.WeekNo),
			Text:         string(info.WeekPlan.Text),
		}
	}
	content.From = parseDate(info.FromDate, a.location())
	content.To = parseDate(info.ToDate, a.location())
	return content
}

func (a *WeekPlan) digest(week domain.Week, info weekPlanInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2> Uge %02d</h2>", week.Number)
	for _, e := range info.Events {
		start, end, ok := a.eventTimes(e)
		if !ok {
			continue
		}
		var when string
		if sameDay(start, end) {
			when = fmt.Sprintf("%s  %s - %s", widgets.DanishWeekday(start), start.Format("15:04"), end.Format("15:04"))
		} else {
			when = widgets.DanishWeekday(start) + " " + widgets.DanishWeekday(end)
		}
		b.WriteString("<br><b>" + when + "</b><br>")
		heading := e.OwnerName
		if string(e.ItemType) == itemTypeTitled {
			heading = e.Title
		}
		b.WriteString("<br><b>" + string(heading) + "</b><br>")
		b.WriteString(string(e.Description) + "<br>")
	}
	return b.String()
}

func (a *WeekPlan) eventTimes(e event) (time.Time, time.Time, bool) {
	start, err := time.ParseInLocation(eventTimeLayout, e.Start, a.location())
	if err != nil {
		a.logger().Debug("skipping event with unparseable start", "start", e.Start)
		return time.Time{}, time.Time{}, false
	}
	end, err := time.ParseInLocation(eventTimeLayout, e.End, a.location())
	if err != nil {
		a.logger().Debug("skipping event with unparseable end", "end", e.End)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (a *WeekPlan) location() *time.Location {
	if a.Location != nil {
		return a.Location
	}
	return time.Local
}

func (a *WeekPlan) logger() hclog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return hclog.NewNullLogger()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func atoi(t widgets.Text) int {
	n, _ := strconv.Atoi(string(t))
	return n
}

func parseDate(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return &t
		}
	}
	return nil
}
