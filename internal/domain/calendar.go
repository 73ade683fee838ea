package domain

import (
	"sort"
	"time"
)

type CalendarEvent struct {
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
}

func SortEvents(events []CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}
