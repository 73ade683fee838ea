// Package huskelisten reads Huskelisten reminders (widget 0062).
package huskelisten

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/aula-cli/internal/adapters/widgets"
	"github.com/bnema/aula-cli/internal/domain"
)

const (
	DefaultBaseURL = "https://systematic-momo.dk/api/aula"
	DefaultZone    = "Europe/Copenhagen"

	// Window is how far ahead reminders are requested.
	Window = 180 * 24 * time.Hour

	widgetVersion = "1.10"
	dueLayout     = "2006-01-02T15:04:05Z"
)

type Reminders struct {
	BaseURL  string
	Client   widgets.Client
	Location *time.Location
}

func New(client widgets.Client) *Reminders {
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		loc = time.Local
	}
	return &Reminders{BaseURL: DefaultBaseURL, Client: client, Location: loc}
}

func (a *Reminders) WidgetID() domain.WidgetID { return domain.WidgetReminders }

type teamReminder struct {
	DueDate     string `json:"dueDate"`
	SubjectName string `json:"subjectName"`
	CreatedBy   string `json:"createdBy"`
	Text        string `json:"reminderText"`
}

type person struct {
	UserName      string         `json:"userName"`
	TeamReminders []teamReminder `json:"teamReminders"`
}

// Fetch ignores req.Week; the window always starts at req.Now.
func (a *Reminders) Fetch(ctx context.Context, req domain.PlanRequest) (domain.PlanBatch, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(a.location())

	var q widgets.Query
	q.AddAll("children", widgets.UserIDs(req.Roster)).
		Add("from", now.Format("2006-01-02")).
		Add("dueNoLaterThan", now.Add(Window).Format("2006-01-02")).
		Add("widgetVersion", widgetVersion).
		Add("userProfile", "guardian").
		Add("sessionId", req.Guardian.Username).
		AddAll("institutions", widgets.InstitutionCodes(req.Roster))

	h := http.Header{}
	h.Set("Aula-Authorization", req.Token)
	h.Set("zone", DefaultZone)

	var people []person
	if err := a.Client.GetJSON(ctx, strings.TrimRight(a.BaseURL, "/")+"/reminders/v1?"+q.Encode(), h, &people); err != nil {
		return nil, fmt.Errorf("reminders: %w", err)
	}

	batch := domain.PlanBatch{}
	for _, p := range people {
		name := domain.FirstNameOf(p.UserName)
		batch[name] = domain.PlanContent{Widget: domain.WidgetReminders, HTML: a.render(name, p.TeamReminders)}
	}
	return batch, nil
}

func (a *Reminders) render(name domain.FirstName, reminders []teamReminder) string {
	if len(reminders) == 0 {
		return fmt.Sprintf("%s har ingen påmindelser.", name)
	}

	var b strings.Builder
	for _, r := range reminders {
		if due, err := time.Parse(dueLayout, r.DueDate); err == nil {
			b.WriteString("<h3>" + widgets.DanishDate(due.In(a.location())) + "</h3>")
		} else {
			b.WriteString("<h3>" + r.DueDate + "</h3>")
		}
		b.WriteString("<b>" + r.SubjectName + "</b>")
		b.WriteString("af " + r.CreatedBy + "<br><br>")
		b.WriteString(widgets.EscapeDigitDots(r.Text) + "<br><br>")
	}
	return b.String()
}

func (a *Reminders) location() *time.Location {
	if a.Location != nil {
		return a.Location
	}
	return time.Local
}
