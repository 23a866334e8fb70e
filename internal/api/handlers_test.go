package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devolta/mautic-metrics/internal/dashboard"
	"github.com/devolta/mautic-metrics/internal/mauticmail"
)

// mockOrchestrator records calls and serves a fixed snapshot.
type mockOrchestrator struct {
	snapshot   dashboard.Snapshot
	filters    dashboard.Filters
	refreshed  int
	resets     int
	rangeErr   error
	lastRange  [2]string
	lastAccout string
	lastEmail  string
}

func (m *mockOrchestrator) State() dashboard.Snapshot    { return m.snapshot }
func (m *mockOrchestrator) Filters() dashboard.Filters   { return m.filters }
func (m *mockOrchestrator) Refresh()                     { m.refreshed++ }
func (m *mockOrchestrator) ResetFiltersAndRetry()        { m.resets++ }
func (m *mockOrchestrator) SetSelectedAccount(id string) { m.lastAccout = id }
func (m *mockOrchestrator) SetSelectedEmail(id string)   { m.lastEmail = id }
func (m *mockOrchestrator) SetDateRange(start, end string) error {
	if m.rangeErr != nil {
		return m.rangeErr
	}
	m.lastRange = [2]string{start, end}
	return nil
}

// mockUpstream serves canned upstream responses.
type mockUpstream struct {
	accounts  []mauticmail.Account
	getErr    error
	healthErr error
}

func (m *mockUpstream) ListAccounts(ctx context.Context) ([]mauticmail.Account, error) {
	return m.accounts, nil
}

func (m *mockUpstream) CreateAccount(ctx context.Context, input mauticmail.AccountInput) (*mauticmail.Account, error) {
	return &mauticmail.Account{ID: "acc-new", Name: input.Name, Provider: input.Provider}, nil
}

func (m *mockUpstream) GetAccount(ctx context.Context, accountID string) (*mauticmail.Account, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &mauticmail.Account{ID: accountID, Name: "Test"}, nil
}

func (m *mockUpstream) UpdateAccount(ctx context.Context, accountID string, input mauticmail.AccountInput) (*mauticmail.Account, error) {
	return &mauticmail.Account{ID: accountID, Name: input.Name}, nil
}

func (m *mockUpstream) DeleteAccount(ctx context.Context, accountID string) error { return nil }

func (m *mockUpstream) CompareAccounts(ctx context.Context, accountIDs []string) ([]mauticmail.AccountMetric, error) {
	out := make([]mauticmail.AccountMetric, 0, len(accountIDs))
	for _, id := range accountIDs {
		out = append(out, mauticmail.AccountMetric{AccountID: id})
	}
	return out, nil
}

func (m *mockUpstream) GetEvents(ctx context.Context, filters mauticmail.Filters) ([]mauticmail.Event, error) {
	return []mauticmail.Event{{ID: "ev-1", Type: "open"}}, nil
}

func (m *mockUpstream) GetEmails(ctx context.Context, filters mauticmail.Filters) ([]mauticmail.Email, error) {
	return []mauticmail.Email{{ID: "e1", Subject: "Hello"}}, nil
}

func (m *mockUpstream) GetEmail(ctx context.Context, emailID string) (*mauticmail.Email, error) {
	return &mauticmail.Email{ID: emailID, Subject: "Hello"}, nil
}

func (m *mockUpstream) SearchEmailSuggestions(ctx context.Context, search string) ([]mauticmail.EmailSuggestion, error) {
	return []mauticmail.EmailSuggestion{{ID: "e1", Subject: "Hello " + search}}, nil
}

func (m *mockUpstream) HealthCheck(ctx context.Context) error { return m.healthErr }

type mockWebhooks struct {
	invalidated []string
	gets        int
}

func (m *mockWebhooks) Get(ctx context.Context, accountID string) (*mauticmail.AccountWebhook, error) {
	m.gets++
	return &mauticmail.AccountWebhook{URL: "https://hooks.example.com/" + accountID}, nil
}

func (m *mockWebhooks) Invalidate(ctx context.Context, accountID string) {
	m.invalidated = append(m.invalidated, accountID)
}

func newTestRouter(orch *mockOrchestrator, up *mockUpstream, wh *mockWebhooks) http.Handler {
	return SetupRoutes(NewHandlers(orch, up, wh), []string{"http://localhost:5173"})
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&mockOrchestrator{}, &mockUpstream{}, &mockWebhooks{})
	rec, env := doRequest(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "ok", data["upstream"])
}

func TestGetDashboardSnapshot(t *testing.T) {
	orch := &mockOrchestrator{
		snapshot: dashboard.Snapshot{
			Status: dashboard.StatusSuccess,
			Totals: mauticmail.AggregateTotals{SentCount: 150},
		},
	}
	router := newTestRouter(orch, &mockUpstream{}, &mockWebhooks{})
	rec, env := doRequest(t, router, http.MethodGet, "/api/dashboard/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, dashboard.StatusSuccess, snap.Status)
	assert.Equal(t, 150, snap.Totals.SentCount)
}

func TestSetDateRange(t *testing.T) {
	orch := &mockOrchestrator{}
	router := newTestRouter(orch, &mockUpstream{}, &mockWebhooks{})
	rec, env := doRequest(t, router, http.MethodPut, "/api/dashboard/filters/date-range",
		map[string]string{"startDate": "2025-05-01", "endDate": "2025-05-31"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, [2]string{"2025-05-01", "2025-05-31"}, orch.lastRange)
}

func TestSetDateRangeInvalid(t *testing.T) {
	orch := &mockOrchestrator{rangeErr: assert.AnError}
	router := newTestRouter(orch, &mockUpstream{}, &mockWebhooks{})
	rec, env := doRequest(t, router, http.MethodPut, "/api/dashboard/filters/date-range",
		map[string]string{"startDate": "2025-06-01", "endDate": "2025-05-01"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
}

func TestRefreshAndReset(t *testing.T) {
	orch := &mockOrchestrator{}
	router := newTestRouter(orch, &mockUpstream{}, &mockWebhooks{})

	rec, _ := doRequest(t, router, http.MethodPost, "/api/dashboard/refresh", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, orch.refreshed)

	rec, _ = doRequest(t, router, http.MethodPost, "/api/dashboard/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, orch.resets)
}

func TestListAccounts(t *testing.T) {
	up := &mockUpstream{accounts: []mauticmail.Account{{ID: "a1"}, {ID: "a2"}}}
	router := newTestRouter(&mockOrchestrator{}, up, &mockWebhooks{})
	rec, env := doRequest(t, router, http.MethodGet, "/api/accounts/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var accounts []mauticmail.Account
	require.NoError(t, json.Unmarshal(env.Data, &accounts))
	assert.Len(t, accounts, 2)
}

func TestCreateAccountRequiresName(t *testing.T) {
	router := newTestRouter(&mockOrchestrator{}, &mockUpstream{}, &mockWebhooks{})
	rec, env := doRequest(t, router, http.MethodPost, "/api/accounts/",
		map[string]string{"provider": "mautic"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestGetAccountNotFoundMapped(t *testing.T) {
	up := &mockUpstream{getErr: &mauticmail.APIError{StatusCode: 404, Message: "unknown account"}}
	router := newTestRouter(&mockOrchestrator{}, up, &mockWebhooks{})
	rec, env := doRequest(t, router, http.MethodGet, "/api/accounts/ghost/", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "unknown account")
}

func TestUpdateAccountInvalidatesWebhook(t *testing.T) {
	wh := &mockWebhooks{}
	router := newTestRouter(&mockOrchestrator{}, &mockUpstream{}, wh)
	rec, _ := doRequest(t, router, http.MethodPut, "/api/accounts/acc-1/",
		map[string]string{"name": "Renamed"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"acc-1"}, wh.invalidated)
}

func TestGetAccountWebhookThroughCache(t *testing.T) {
	wh := &mockWebhooks{}
	router := newTestRouter(&mockOrchestrator{}, &mockUpstream{}, wh)
	rec, env := doRequest(t, router, http.MethodGet, "/api/accounts/acc-1/webhook", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var webhook mauticmail.AccountWebhook
	require.NoError(t, json.Unmarshal(env.Data, &webhook))
	assert.Equal(t, "https://hooks.example.com/acc-1", webhook.URL)
	assert.Equal(t, 1, wh.gets)
}

func TestCompareAccountsParsesIDs(t *testing.T) {
	router := newTestRouter(&mockOrchestrator{}, &mockUpstream{}, &mockWebhooks{})
	rec, env := doRequest(t, router, http.MethodGet, "/api/accounts/compare?accountIds=a1,a2", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var metrics []mauticmail.AccountMetric
	require.NoError(t, json.Unmarshal(env.Data, &metrics))
	assert.Len(t, metrics, 2)

	rec, _ = doRequest(t, router, http.MethodGet, "/api/accounts/compare", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEvents(t *testing.T) {
	router := newTestRouter(&mockOrchestrator{}, &mockUpstream{}, &mockWebhooks{})
	rec, env := doRequest(t, router, http.MethodGet, "/api/events?startDate=2025-05-01", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var events []mauticmail.Event
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "open", events[0].Type)
}

func TestSearchSuggestionsRequiresTerm(t *testing.T) {
	router := newTestRouter(&mockOrchestrator{}, &mockUpstream{}, &mockWebhooks{})

	rec, _ := doRequest(t, router, http.MethodGet, "/api/emails/search/suggestions?search=wel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := doRequest(t, router, http.MethodGet, "/api/emails/search/suggestions", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}
