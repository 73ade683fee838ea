// Package minuddannelse reads the MinUddannelse weekly letter (widget 0029)
// and task list (widget 0030).
package minuddannelse

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/aula-cli/internal/adapters/widgets"
	"github.com/bnema/aula-cli/internal/domain"
)

const DefaultBaseURL = "https://api.minuddannelse.net/aula"

type LessonPlan struct {
	BaseURL string
	Client  widgets.Client
}

func NewLessonPlan(client widgets.Client) *LessonPlan {
	return &LessonPlan{BaseURL: DefaultBaseURL, Client: client}
}

func (a *LessonPlan) WidgetID() domain.WidgetID { return domain.WidgetLessonPlan }

type letterResponse struct {
	Persons []struct {
		Name         string `json:"navn"`
		Institutions []struct {
			Letters []struct {
				Content string `json:"indhold"`
			} `json:"ugebreve"`
		} `json:"institutioner"`
	} `json:"personer"`
}

func (a *LessonPlan) Fetch(ctx context.Context, req domain.PlanRequest) (domain.PlanBatch, error) {
	var resp letterResponse
	if err := a.Client.GetJSON(ctx, endpoint(a.BaseURL, "/ugebrev", req), headers(req), &resp); err != nil {
		return nil, fmt.Errorf("weekly letter: %w", err)
	}

	batch := domain.PlanBatch{}
	for _, person := range resp.Persons {
		if len(person.Institutions) == 0 || len(person.Institutions[0].Letters) == 0 {
			continue
		}
		batch[domain.FirstNameOf(person.Name)] = domain.PlanContent{
			Widget: domain.WidgetLessonPlan,
			HTML:   person.Institutions[0].Letters[0].Content,
		}
	}
	return batch, nil
}

type TaskList struct {
	BaseURL string
	Client  widgets.Client
}

func NewTaskList(client widgets.Client) *TaskList {
	return &TaskList{BaseURL: DefaultBaseURL, Client: client}
}

func (a *TaskList) WidgetID() domain.WidgetID { return domain.WidgetTaskList }

type task struct {
	Title    string `json:"title"`
	Envelope string `json:"kuvertnavn"`
	Weekday  string `json:"ugedag"`
	Kind     string `json:"opgaveType"`
	Teams    []struct {
		Name string `json:"navn"`
	} `json:"hold"`
	Course *struct {
		Name string `json:"navn"`
	} `json:"forloeb"`
}

type taskResponse struct {
	Tasks []task `json:"opgaver"`
}

// Fetch renders one entry per rostered child. A child without tasks still
// gets an entry, so stale content from an earlier week never survives.
func (a *TaskList) Fetch(ctx context.Context, req domain.PlanRequest) (domain.PlanBatch, error) {
	var resp taskResponse
	if err := a.Client.GetJSON(ctx, endpoint(a.BaseURL, "/opgaveliste", req), headers(req), &resp); err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}

	batch := domain.PlanBatch{}
	for _, name := range req.Roster.FirstNames() {
		var b strings.Builder
		for _, t := range resp.Tasks {
			if domain.FirstNameOf(t.Envelope) != name {
				continue
			}
			writeTask(&b, t)
		}
		batch[name] = domain.PlanContent{Widget: domain.WidgetTaskList, HTML: b.String()}
	}
	return batch, nil
}

func writeTask(b *strings.Builder, t task) {
	fmt.Fprintf(b, "<h2>%s</h2>", t.Title)
	fmt.Fprintf(b, "<h3>%s</h3>", t.Envelope)
	fmt.Fprintf(b, "Ugedag: %s<br>", t.Weekday)
	fmt.Fprintf(b, "Type: %s<br>", t.Kind)
	for _, team := range t.Teams {
		fmt.Fprintf(b, "Hold: %s<br>", team.Name)
	}
	if t.Course != nil {
		fmt.Fprintf(b, "Forløb: %s", t.Course.Name)
	}
}

func endpoint(base string, path string, req domain.PlanRequest) string {
	var q widgets.Query
	q.Add("assuranceLevel", "2").
		Add("childFilter", strings.Join(widgets.UserIDs(req.Roster), ",")).
		Add("currentWeekNumber", req.Week.String()).
		Add("isMobileApp", "false").
		Add("placement", "narrow").
		Add("sessionUUID", req.Guardian.UserID).
		Add("userProfile", "guardian")
	return strings.TrimRight(base, "/") + path + "?" + q.Encode()
}

func headers(req domain.PlanRequest) http.Header {
	h := http.Header{}
	h.Set("Authorization", req.Token)
	return h
}
