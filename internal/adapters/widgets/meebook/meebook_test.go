package meebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bnema/aula-cli/internal/adapters/widgets"
	"github.com/bnema/aula-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRendersWeekPlan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/relatedweekplan/all", r.URL.Path)
		assert.Equal(t, "currentWeekNumber=2026-W43&userProfile=guardian&childFilter[]=11&childFilter[]=22&institutionFilter[]=A100", r.URL.RawQuery)
		assert.Equal(t, "Bearer widget-token", r.Header.Get("Authorization"))
		assert.Equal(t, "parent", r.Header.Get("sessionuuid"))
		assert.Equal(t, "1.0", r.Header.Get("x-version"))
		// Raw newline inside a string value.
		_, _ = w.Write([]byte("[{\"name\":\"Emilie Hansen\",\"weekPlan\":[" +
			"{\"date\":\"mandag 19. okt.\",\"tasks\":[{\"pill\":\"Ingen fag tilknyttet\",\"author\":\"Met\",\"content\":\"1. lektion\nLæsning\"}]}," +
			"{\"date\":\"tirsdag 20. okt.\",\"tasks\":[{\"pill\":\"Dansk\",\"author\":\"May\",\"content\":\"Skriv\"}]}," +
			"{\"date\":\"onsdag 21. okt.\",\"tasks\":[]}]}," +
			"{\"name\":\"Solo\",\"weekPlan\":[]}]"))
	}))
	defer server.Close()

	adapter := New(widgets.Client{HTTPClient: server.Client()})
	adapter.BaseURL = server.URL

	batch, err := adapter.Fetch(context.Background(), domain.PlanRequest{
		Week:     domain.Week{Year: 2026, Number: 43},
		Token:    "Bearer widget-token",
		Guardian: domain.Guardian{UserID: "777", Username: "parent"},
		Roster: domain.Roster{
			Children:     []domain.Child{{UserID: "11"}, {UserID: "22"}},
			Institutions: []domain.Institution{{Code: "A100"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, batch, 2)

	want := "<h3>mandag 19. okt.</h3>Met<br><br>1\\. lektion\nLæsning<br><br>" +
		"<h3>tirsdag 20. okt.</h3><b>Dansk</b><br>May<br><br>Skriv<br><br>" +
		"<h3>onsdag 21. okt.</h3>-"
	assert.Equal(t, want, batch["Emilie"].HTML)
	assert.Empty(t, batch["Solo"].HTML)
}

func TestFetchMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	adapter := New(widgets.Client{HTTPClient: server.Client()})
	adapter.BaseURL = server.URL

	_, err := adapter.Fetch(context.Background(), domain.PlanRequest{})
	require.ErrorIs(t, err, domain.ErrMalformedResponse)
}
