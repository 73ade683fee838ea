package status

import (
	"testing"
	"time"

	"github.com/bnema/aula-cli/internal/application"
	"github.com/bnema/aula-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(now time.Time) application.Snapshot {
	return application.Snapshot{
		RefreshedAt: now.Add(-2 * time.Minute),
		Endpoint:    domain.APIEndpoint{Base: "https://www.aula.dk/api/v", Version: 22},
		Guardian:    domain.Guardian{UserID: "777", Username: "parent01"},
		Roster: domain.Roster{Children: []domain.Child{
			{ID: "1", Name: "Anna Jensen", FirstName: "Anna", Institution: domain.Institution{Code: "A100", Name: "Holme Skole"}},
			{ID: "2", Name: "Bo Jensen", FirstName: "Bo"},
		}},
		Presence: map[domain.ChildID]domain.Presence{
			"1": {HasData: true, Record: domain.PresenceRecord{
				Status:      domain.PresenceArrived,
				CheckInTime: "08:02",
				EntryTime:   "08:00",
				ExitTime:    "15:30",
				Location:    "Legepladsen",
			}},
		},
		Message: domain.MessageSummary{Unread: true, Subject: "Tur i morgen", Sender: "Lise Hansen", Text: "<p>Husk <b>madpakke</b></p>"},
	}
}

func TestRenderSnapshot(t *testing.T) {
	now := time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)

	output, err := Render(testSnapshot(now), RenderOptions{Now: now, StaleAfter: 10 * time.Minute})
	require.NoError(t, err)
	assert.Contains(t, output, "parent01")
	assert.Contains(t, output, "children: 2")
	assert.Contains(t, output, "api: v22")
	assert.Contains(t, output, "refreshed: 10:58")
	assert.Contains(t, output, "Anna Jensen")
	assert.Contains(t, output, "Holme Skole")
	assert.Contains(t, output, "Kommet/Til stede")
	assert.Contains(t, output, "08:00 - 15:30")
	assert.Contains(t, output, "location: Legepladsen")
	assert.Contains(t, output, "n/a")
	assert.Contains(t, output, "Tur i morgen")
	assert.Contains(t, output, "madpakke")
	assert.NotContains(t, output, "<b>")
	assert.NotContains(t, output, "stale")
}

func TestRenderSnapshotStaleAndEmpty(t *testing.T) {
	now := time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)

	output, err := Render(application.Snapshot{RefreshedAt: now.Add(-time.Hour)}, RenderOptions{Now: now, StaleAfter: 10 * time.Minute})
	require.NoError(t, err)
	assert.Contains(t, output, "[stale]")
	assert.Contains(t, output, "No children on this account.")
	assert.Contains(t, output, "No unread messages.")
}

func TestRenderPlans(t *testing.T) {
	week := domain.Week{Year: 2026, Number: 43}
	output, err := RenderPlans([]application.ChildPlan{
		{
			Child:    domain.Child{Name: "Anna Jensen"},
			Week:     week,
			Found:    true,
			Content:  domain.PlanContent{HTML: "<h3>mandag</h3>1\\. lektion<br>Læsning"},
			Reminder: "Anna har ingen påmindelser.",
		},
		{Child: domain.Child{Name: "Bo Jensen"}, Week: week},
		{
			Child: domain.Child{Name: "Carl Jensen"},
			Week:  week,
			Found: true,
			Content: domain.PlanContent{Events: []domain.PlanEvent{{
				Start: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
				Title: "Ekskursion",
			}}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, output, "Anna Jensen - 2026-W43")
	assert.Contains(t, output, "1. lektion")
	assert.Contains(t, output, "Læsning")
	assert.Contains(t, output, "Anna har ingen påmindelser.")
	assert.Contains(t, output, "No week plan.")
	assert.Contains(t, output, "Ekskursion")
}

func TestRenderEvents(t *testing.T) {
	output, err := RenderEvents(domain.Child{Name: "Anna Jensen"}, []domain.CalendarEvent{
		{Start: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), End: time.Date(2026, 10, 19, 8, 45, 0, 0, time.UTC), Summary: "Dansk, LH"},
		{Start: time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC), End: time.Date(2026, 10, 20, 9, 45, 0, 0, time.UTC), Summary: "Matematik, VIKAR: Ole"},
	})
	require.NoError(t, err)
	assert.Contains(t, output, "events: 2")
	assert.Contains(t, output, "Monday 19 October")
	assert.Contains(t, output, "08:00-08:45")
	assert.Contains(t, output, "VIKAR: Ole")
}

func TestPlainText(t *testing.T) {
	s := newStyles()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "hello", want: "hello"},
		{name: "breaks", in: "a<br>b", want: "a\nb"},
		{name: "headings", in: "<h2>Uge 43</h2>tekst", want: "Uge 43\ntekst"},
		{name: "entities", in: "R&amp;D", want: "R&D"},
		{name: "escaped digits", in: `3\. klasse`, want: "3. klasse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainText(tt.in, s))
		})
	}
}
