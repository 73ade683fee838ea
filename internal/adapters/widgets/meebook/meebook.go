// Package meebook reads Meebook week plans (widget 0004).
package meebook

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/aula-cli/internal/adapters/widgets"
	"github.com/bnema/aula-cli/internal/domain"
)

const (
	DefaultBaseURL = "https://app.meebook.com/aulaapi"

	noSubject = "Ingen fag tilknyttet"
)

type WeekPlan struct {
	BaseURL string
	Client  widgets.Client
}

func New(client widgets.Client) *WeekPlan {
	return &WeekPlan{BaseURL: DefaultBaseURL, Client: client}
}

func (a *WeekPlan) WidgetID() domain.WidgetID { return domain.WidgetMeebook }

type person struct {
	Name     string `json:"name"`
	WeekPlan []struct {
		Date  string `json:"date"`
		Tasks []struct {
			Pill    string `json:"pill"`
			Author  string `json:"author"`
			Content string `json:"content"`
		} `json:"tasks"`
	} `json:"weekPlan"`
}

func (a *WeekPlan) Fetch(ctx context.Context, req domain.PlanRequest) (domain.PlanBatch, error) {
	var q widgets.Query
	q.Add("currentWeekNumber", req.Week.String()).
		Add("userProfile", "guardian").
		AddAll("childFilter[]", widgets.UserIDs(req.Roster)).
		AddAll("institutionFilter[]", widgets.InstitutionCodes(req.Roster))

	h := http.Header{}
	h.Set("Authorization", req.Token)
	h.Set("sessionuuid", req.Guardian.Username)
	h.Set("x-version", "1.0")

	var people []person
	if err := a.Client.GetJSON(ctx, strings.TrimRight(a.BaseURL, "/")+"/relatedweekplan/all?"+q.Encode(), h, &people); err != nil {
		return nil, fmt.Errorf("related week plans: %w", err)
	}

	batch := domain.PlanBatch{}
	for _, p := range people {
		batch[domain.FirstNameOf(p.Name)] = domain.PlanContent{Widget: domain.WidgetMeebook, HTML: render(p)}
	}
	return batch, nil
}

func render(p person) string {
	var b strings.Builder
	for _, day := range p.WeekPlan {
		b.WriteString("<h3>" + day.Date + "</h3>")
		if len(day.Tasks) == 0 {
			b.WriteString("-")
			continue
		}
		for _, task := range day.Tasks {
			if task.Pill != noSubject {
				b.WriteString("<b>" + task.Pill + "</b><br>")
			}
			b.WriteString(task.Author + "<br><br>")
			b.WriteString(widgets.EscapeDigitDots(task.Content) + "<br><br>")
		}
	}
	return b.String()
}
