package application

import (
	"testing"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lessonFixture = `{"status":{"message":"OK"},"data":[
	{"type":"lesson","title":"Matematik","startDateTime":"2026-10-19T08:00:00+00:00","endDateTime":"2026-10-19T08:45:00+00:00",
	 "belongsToProfiles":[101],
	 "lesson":{"participants":[{"participantRole":"teacher","teacherInitials":"LIS","teacherName":"Lise Holm"}]}},
	{"type":"lesson","title":"Dansk","startDateTime":"2026-10-19T09:00:00+00:00","endDateTime":"2026-10-19T09:45:00+00:00",
	 "belongsToProfiles":["101"],
	 "lesson":{"participants":[
		{"participantRole":"teacher","teacherInitials":"PER"},
		{"participantRole":"substituteTeacher","teacherName":"Karen Vikar"}]}},
	{"type":"lesson","title":"Idræt","startDateTime":"2026-10-19T10:00:00+0000","endDateTime":"2026-10-19T10:45:00+0000",
	 "belongsToProfiles":[101],
	 "lesson":{"participants":[{"participantRole":"teacher","teacherName":"Ole Bold"}]}},
	{"type":"lesson","title":"Musik","startDateTime":"2026-10-19T11:00:00+00:00","endDateTime":"2026-10-19T11:45:00+00:00",
	 "belongsToProfiles":[101],"lesson":{"participants":[]}},
	{"type":"lesson","title":"Engelsk","startDateTime":"2026-10-19T08:00:00+00:00","endDateTime":"2026-10-19T08:45:00+00:00",
	 "belongsToProfiles":[102],"lesson":{"participants":[]}},
	{"type":"event","title":"Forældremøde","startDateTime":"2026-10-19T17:00:00+00:00","endDateTime":"2026-10-19T18:00:00+00:00",
	 "belongsToProfiles":[101]}
]}`

func TestParseLessonsPicksTeacher(t *testing.T) {
	events, err := ParseLessons([]byte(lessonFixture), "101")
	require.NoError(t, err)

	summaries := make([]string, 0, len(events))
	for _, e := range events {
		summaries = append(summaries, e.Summary)
	}
	assert.Equal(t, []string{
		"Matematik, LIS",
		"Dansk, VIKAR: Karen Vikar",
		"Idræt, Ole Bold",
		"Musik, ",
	}, summaries)
	assert.Equal(t, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), events[0].Start.UTC())
	assert.Equal(t, time.Date(2026, 10, 19, 10, 45, 0, 0, time.UTC), events[2].End.UTC())
}

func TestParseLessonsRejectsCorruptSnapshot(t *testing.T) {
	_, err := ParseLessons([]byte(`{"data":`), "101")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestPlanEvents(t *testing.T) {
	start := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)
	events := PlanEvents(domain.PlanContent{Events: []domain.PlanEvent{
		{Start: start, End: start.Add(time.Hour), Course: "Matematik", Activity: "Brøker", Description: "Side 12"},
	}})

	require.Len(t, events, 1)
	assert.Equal(t, "Matematik - Brøker", events[0].Summary)
	assert.Equal(t, "Side 12", events[0].Description)
}
