package widgets

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
)

var digitDot = regexp.MustCompile(`([0-9]+)(\.)`)

// EscapeDigitDots turns "1." into "1\." so numbered lines are not read as
// list markers downstream.
func EscapeDigitDots(s string) string {
	return digitDot.ReplaceAllString(s, `$1\.`)
}

var danishWeekdays = [...]string{"Søndag", "Mandag", "Tirsdag", "Onsdag", "Torsdag", "Fredag", "Lørdag"}

var danishMonths = [...]string{"januar", "februar", "marts", "april", "maj", "juni", "juli", "august", "september", "oktober", "november", "december"}

func DanishWeekday(t time.Time) string {
	return danishWeekdays[t.Weekday()]
}

// DanishDate renders e.g. "Tirsdag 29. november".
func DanishDate(t time.Time) string {
	return fmt.Sprintf("%s %02d. %s", DanishWeekday(t), t.Day(), danishMonths[t.Month()-1])
}

// Query builds a query string in insertion order. Keys are written verbatim
// so bracketed array keys survive.
type Query struct {
	parts []string
}

func (q *Query) Add(key string, value string) *Query {
	q.parts = append(q.parts, key+"="+url.QueryEscape(value))
	return q
}

func (q *Query) AddAll(key string, values []string) *Query {
	for _, v := range values {
		q.Add(key, v)
	}
	return q
}

func (q *Query) Encode() string {
	return strings.Join(q.parts, "&")
}

func UserIDs(roster domain.Roster) []string {
	ids := roster.UserIDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func InstitutionCodes(roster domain.Roster) []string {
	codes := roster.InstitutionCodes()
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, string(code))
	}
	return out
}

// Text decodes a JSON string, number or null into a string.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*t = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", raw)
		}
		*t = Text(n.String())
	}
	return nil
}
