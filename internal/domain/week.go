package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Week is an ISO-8601 week.
type Week struct {
	Year   int
	Number int
}

func WeekOf(t time.Time) Week {
	year, number := t.ISOWeek()
	return Week{Year: year, Number: number}
}

func (w Week) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Number)
}

// Monday returns midnight UTC of the week's first day.
func (w Week) Monday() time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(w.Number-1)*7)
}

func (w Week) Next() Week {
	return WeekOf(w.Monday().AddDate(0, 0, 7))
}

func ParseWeek(raw string) (Week, error) {
	yearPart, numberPart, ok := strings.Cut(strings.TrimSpace(raw), "-W")
	if !ok {
		return Week{}, fmt.Errorf("invalid week %q", raw)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Week{}, fmt.Errorf("invalid week year %q: %w", raw, err)
	}
	number, err := strconv.Atoi(numberPart)
	if err != nil || number < 1 || number > 53 {
		return Week{}, fmt.Errorf("invalid week number %q", raw)
	}
	return Week{Year: year, Number: number}, nil
}
