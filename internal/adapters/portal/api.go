package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
)

const (
	maxAPIResponseBytes = 16 << 20
	calendarTimeLayout  = "2006-01-02 00:00:00.0000-0700"
)

func (s *Session) Widgets(ctx context.Context) (domain.WidgetSet, error) {
	var data profileContextData
	if err := s.getData(ctx, "?method=profiles.getProfileContext", &data); err != nil {
		return nil, fmt.Errorf("discover widgets: %w", err)
	}
	return data.widgets(), nil
}

func (s *Session) DailyOverview(ctx context.Context, child domain.ChildID) ([]domain.PresenceRecord, error) {
	var data []presenceRecord
	if err := s.getData(ctx, "?method=presence.getDailyOverview&childIds[]="+url.QueryEscape(string(child)), &data); err != nil {
		return nil, fmt.Errorf("daily overview for %s: %w", child, err)
	}
	records := make([]domain.PresenceRecord, 0, len(data))
	for _, r := range data {
		records = append(records, r.toDomain())
	}
	return records, nil
}

func (s *Session) Threads(ctx context.Context) ([]domain.ThreadSummary, error) {
	var data threadsData
	if err := s.getData(ctx, "?method=messaging.getThreads&sortOn=date&orderDirection=desc&page=0", &data); err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	threads := make([]domain.ThreadSummary, 0, len(data.Threads))
	for _, t := range data.Threads {
		threads = append(threads, domain.ThreadSummary{ID: domain.ThreadID(t.ID), Subject: t.Subject, Read: t.Read})
	}
	return threads, nil
}

// ThreadMessages loads one thread. Threads that need MitID come back as
// 403, either on the wire or inside the envelope.
func (s *Session) ThreadMessages(ctx context.Context, id domain.ThreadID) (domain.Thread, error) {
	status, body, err := s.api(ctx, http.MethodGet, "?method=messaging.getMessagesForThread&threadId="+url.QueryEscape(string(id))+"&page=0", nil)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("load thread %s: %w", id, err)
	}
	if status == http.StatusForbidden {
		return domain.Thread{Sensitive: true}, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.Thread{}, fmt.Errorf("load thread %s: %w: %v", id, domain.ErrMalformedResponse, err)
	}
	if env.Status.Code == http.StatusForbidden {
		return domain.Thread{Sensitive: true}, nil
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return domain.Thread{}, fmt.Errorf("load thread %s: %w: %d", id, domain.ErrUnexpectedStatus, status)
	}

	var data threadData
	if err := env.decodeData(&data); err != nil {
		return domain.Thread{}, fmt.Errorf("load thread %s: %w", id, err)
	}
	return data.toDomain(), nil
}

type calendarQuery struct {
	InstProfileIDs []json.Number `json:"instProfileIds"`
	ResourceIDs    []json.Number `json:"resourceIds"`
	Start          string        `json:"start"`
	End            string        `json:"end"`
}

// CalendarEvents returns the raw calendar response for the given children.
func (s *Session) CalendarEvents(ctx context.Context, children []domain.ChildID, start time.Time, end time.Time) ([]byte, error) {
	query := calendarQuery{
		InstProfileIDs: make([]json.Number, 0, len(children)),
		ResourceIDs:    []json.Number{},
		Start:          start.UTC().Format(calendarTimeLayout),
		End:            end.UTC().Format(calendarTimeLayout),
	}
	for _, id := range children {
		query.InstProfileIDs = append(query.InstProfileIDs, json.Number(id))
	}
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode calendar query: %w", err)
	}

	status, body, err := s.api(ctx, http.MethodPost, "?method=calendar.getEventsByProfileIdsAndResourceIds", payload)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch calendar: %w: %d", domain.ErrUnexpectedStatus, status)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch calendar: %w: body is not json", domain.ErrMalformedResponse)
	}
	return body, nil
}

// IssueWidgetToken asks the portal for a fresh vendor token. The value is
// returned without the Bearer prefix.
func (s *Session) IssueWidgetToken(ctx context.Context, widget domain.WidgetID) (string, error) {
	var token flexString
	if err := s.getData(ctx, "?method=aulaToken.getAulaToken&widgetId="+url.QueryEscape(string(widget)), &token); err != nil {
		return "", fmt.Errorf("issue token for widget %s: %w", widget, err)
	}
	if token == "" {
		return "", fmt.Errorf("issue token for widget %s: %w: empty token", widget, domain.ErrMalformedResponse)
	}
	return string(token), nil
}

// Call sends an arbitrary API request relative to the versioned endpoint.
// A non-nil body is sent as JSON and must be valid.
func (s *Session) Call(ctx context.Context, path string, body json.RawMessage) (domain.RawResponse, error) {
	method := http.MethodGet
	if body != nil {
		if !json.Valid(body) {
			return domain.RawResponse{}, fmt.Errorf("%w: body is not valid json", domain.ErrInvalidRequest)
		}
		method = http.MethodPost
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.RawResponse{}, fmt.Errorf("%w: path is required", domain.ErrInvalidRequest)
	}

	status, respBody, err := s.api(ctx, method, path, body)
	if err != nil {
		return domain.RawResponse{}, fmt.Errorf("call %s: %w", path, err)
	}
	return domain.RawResponse{StatusCode: status, Body: string(respBody)}, nil
}

func (s *Session) getEnvelope(ctx context.Context, query string) (envelope, error) {
	status, body, err := s.api(ctx, http.MethodGet, query, nil)
	if err != nil {
		return envelope{}, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return envelope{}, fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, status)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return env, nil
}

func (s *Session) getData(ctx context.Context, query string, out any) error {
	env, err := s.getEnvelope(ctx, query)
	if err != nil {
		return err
	}
	return env.decodeData(out)
}

func decodeEnvelopeData(status int, body []byte, out any) error {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, status)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return env.decodeData(out)
}

// api sends a request on the current session. POST bodies carry the CSRF
// token the portal expects.
func (s *Session) api(ctx context.Context, method string, query string, body []byte) (int, []byte, error) {
	client, endpoint := s.current()
	if client == nil || !endpoint.Resolved() {
		return 0, nil, errNoSession
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	if csrf := s.CSRFToken(); csrf != "" {
		headers.Set("csrfp-token", csrf)
	}
	if body != nil {
		headers.Set("Content-Type", "application/json")
	}
	return s.send(ctx, client, method, endpoint.URL()+query, body, headers)
}

func (s *Session) send(ctx context.Context, client *http.Client, method string, rawURL string, body []byte, headers http.Header) (int, []byte, error) {
	requestCtx, cancel := s.requestContext(ctx)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(requestCtx, method, rawURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
