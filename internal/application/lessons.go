package application

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
)

const substituteRole = "substituteTeacher"

var lessonTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05-0700"}

type lessonSnapshot struct {
	Data []lessonEntry `json:"data"`
}

type lessonEntry struct {
	Type              string        `json:"type"`
	Title             string        `json:"title"`
	StartDateTime     string        `json:"startDateTime"`
	EndDateTime       string        `json:"endDateTime"`
	BelongsToProfiles []json.Number `json:"belongsToProfiles"`
	Lesson            *struct {
		Participants []struct {
			ParticipantRole string `json:"participantRole"`
			TeacherName     string `json:"teacherName"`
			TeacherInitials string `json:"teacherInitials"`
		} `json:"participants"`
	} `json:"lesson"`
}

// ParseLessons extracts the lessons of one child from a calendar snapshot.
// Entries with unreadable times are skipped.
func ParseLessons(raw []byte, child domain.ChildID) ([]domain.CalendarEvent, error) {
	var snapshot lessonSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: calendar snapshot: %v", domain.ErrMalformedResponse, err)
	}

	var events []domain.CalendarEvent
	for _, entry := range snapshot.Data {
		if entry.Type != "lesson" || len(entry.BelongsToProfiles) == 0 {
			continue
		}
		if entry.BelongsToProfiles[0].String() != string(child) {
			continue
		}
		start, err := parseLessonTime(entry.StartDateTime)
		if err != nil {
			continue
		}
		end, err := parseLessonTime(entry.EndDateTime)
		if err != nil {
			continue
		}

		events = append(events, domain.CalendarEvent{
			Start:   start,
			End:     end,
			Summary: entry.Title + ", " + entry.teacher(),
		})
	}
	return events, nil
}

// teacher prefers a substitute, then the first participant's initials,
// then their name.
func (e lessonEntry) teacher() string {
	if e.Lesson == nil {
		return ""
	}
	for _, p := range e.Lesson.Participants {
		if p.ParticipantRole == substituteRole {
			return "VIKAR: " + p.TeacherName
		}
	}
	if len(e.Lesson.Participants) == 0 {
		return ""
	}
	first := e.Lesson.Participants[0]
	if first.TeacherInitials != "" {
		return first.TeacherInitials
	}
	return first.TeacherName
}

func parseLessonTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range lessonTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// PlanEvents converts structured EasyIQ plan events into calendar events.
func PlanEvents(content domain.PlanContent) []domain.CalendarEvent {
	events := make([]domain.CalendarEvent, 0, len(content.Events))
	for _, e := range content.Events {
		events = append(events, domain.CalendarEvent{
			Start:       e.Start,
			End:         e.End,
			Summary:     e.Course + " - " + e.Activity,
			Description: e.Description,
		})
	}
	return events
}
