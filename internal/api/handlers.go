package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devolta/mautic-metrics/internal/dashboard"
	"github.com/devolta/mautic-metrics/internal/mauticmail"
	"github.com/devolta/mautic-metrics/internal/pkg/httputil"
)

// Orchestrator is the dashboard state machine surface the handlers
// drive. *dashboard.Service satisfies it.
type Orchestrator interface {
	State() dashboard.Snapshot
	Filters() dashboard.Filters
	SetDateRange(startDate, endDate string) error
	SetSelectedAccount(accountID string)
	SetSelectedEmail(emailID string)
	Refresh()
	ResetFiltersAndRetry()
}

// UpstreamAPI is the slice of the metrics client used for passthrough
// endpoints. *mauticmail.Client satisfies it.
type UpstreamAPI interface {
	ListAccounts(ctx context.Context) ([]mauticmail.Account, error)
	CreateAccount(ctx context.Context, input mauticmail.AccountInput) (*mauticmail.Account, error)
	GetAccount(ctx context.Context, accountID string) (*mauticmail.Account, error)
	UpdateAccount(ctx context.Context, accountID string, input mauticmail.AccountInput) (*mauticmail.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
	CompareAccounts(ctx context.Context, accountIDs []string) ([]mauticmail.AccountMetric, error)
	GetEvents(ctx context.Context, filters mauticmail.Filters) ([]mauticmail.Event, error)
	GetEmails(ctx context.Context, filters mauticmail.Filters) ([]mauticmail.Email, error)
	GetEmail(ctx context.Context, emailID string) (*mauticmail.Email, error)
	SearchEmailSuggestions(ctx context.Context, search string) ([]mauticmail.EmailSuggestion, error)
	HealthCheck(ctx context.Context) error
}

// WebhookCache resolves account webhooks with session caching.
type WebhookCache interface {
	Get(ctx context.Context, accountID string) (*mauticmail.AccountWebhook, error)
	Invalidate(ctx context.Context, accountID string)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	orchestrator Orchestrator
	upstream     UpstreamAPI
	webhooks     WebhookCache
	startTime    time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(orchestrator Orchestrator, upstream UpstreamAPI, webhooks WebhookCache) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		upstream:     upstream,
		webhooks:     webhooks,
		startTime:    time.Now(),
	}
}

// writeError maps façade errors onto envelope responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mauticmail.ErrMissingUserID),
		errors.Is(err, mauticmail.ErrMissingAccountID),
		errors.Is(err, mauticmail.ErrMissingEmailID):
		httputil.BadRequest(w, err.Error())
	case mauticmail.IsStatus(err, http.StatusNotFound):
		httputil.NotFound(w, err.Error())
	case mauticmail.IsStatus(err, http.StatusForbidden):
		httputil.Error(w, http.StatusForbidden, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}

// HealthCheck reports service health and upstream reachability.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	upstreamStatus := "ok"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.upstream.HealthCheck(ctx); err != nil {
		upstreamStatus = "unreachable"
	}

	httputil.OK(w, map[string]interface{}{
		"status":   "ok",
		"uptime":   time.Since(h.startTime).String(),
		"upstream": upstreamStatus,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

// GetDashboard returns the current orchestrator snapshot.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.orchestrator.State())
}

// RefreshDashboard forces an immediate refetch with current filters.
func (h *Handlers) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Refresh()
	httputil.OK(w, h.orchestrator.State())
}

// ResetDashboard restores default filters and refetches.
func (h *Handlers) ResetDashboard(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.ResetFiltersAndRetry()
	httputil.OK(w, h.orchestrator.Filters())
}

type dateRangeRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// SetDateRange updates the dashboard date window.
func (h *Handlers) SetDateRange(w http.ResponseWriter, r *http.Request) {
	var req dateRangeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := h.orchestrator.SetDateRange(req.StartDate, req.EndDate); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, h.orchestrator.Filters())
}

type accountFilterRequest struct {
	AccountID string `json:"accountId"`
}

// SetSelectedAccount updates the dashboard account filter.
func (h *Handlers) SetSelectedAccount(w http.ResponseWriter, r *http.Request) {
	var req accountFilterRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	h.orchestrator.SetSelectedAccount(req.AccountID)
	httputil.OK(w, h.orchestrator.Filters())
}

type emailFilterRequest struct {
	EmailID string `json:"emailId"`
}

// SetSelectedEmail updates the dashboard email filter.
func (h *Handlers) SetSelectedEmail(w http.ResponseWriter, r *http.Request) {
	var req emailFilterRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	h.orchestrator.SetSelectedEmail(req.EmailID)
	httputil.OK(w, h.orchestrator.Filters())
}

// ListAccounts returns all upstream accounts.
func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.upstream.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, accounts)
}

// CreateAccount creates an account on the upstream platform.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var input mauticmail.AccountInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	if input.Name == "" {
		httputil.BadRequest(w, "account name is required")
		return
	}
	account, err := h.upstream.CreateAccount(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.Created(w, account)
}

// GetAccount returns one account by id.
func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.upstream.GetAccount(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, account)
}

// UpdateAccount updates an account and invalidates its cached webhook.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	var input mauticmail.AccountInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	account, err := h.upstream.UpdateAccount(r.Context(), accountID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	h.webhooks.Invalidate(r.Context(), accountID)
	httputil.OK(w, account)
}

// DeleteAccount deletes an account and invalidates its cached webhook.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if err := h.upstream.DeleteAccount(r.Context(), accountID); err != nil {
		writeError(w, err)
		return
	}
	h.webhooks.Invalidate(r.Context(), accountID)
	httputil.OK(w, map[string]string{"id": accountID})
}

// GetAccountWebhook resolves an account's webhook through the cache.
func (h *Handlers) GetAccountWebhook(w http.ResponseWriter, r *http.Request) {
	webhook, err := h.webhooks.Get(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, webhook)
}

// CompareAccounts returns side-by-side aggregates for a set of
// accounts given as ?accountIds=a,b,c or repeated params.
func (h *Handlers) CompareAccounts(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, raw := range r.URL.Query()["accountIds"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		httputil.BadRequest(w, "accountIds is required")
		return
	}
	metrics, err := h.upstream.CompareAccounts(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, metrics)
}

// ListEmails returns campaign emails matching the query filters.
func (h *Handlers) ListEmails(w http.ResponseWriter, r *http.Request) {
	emails, err := h.upstream.GetEmails(r.Context(), filtersFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, emails)
}

// GetEmail returns one campaign email by id.
func (h *Handlers) GetEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.upstream.GetEmail(r.Context(), chi.URLParam(r, "emailID"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, email)
}

// SearchEmailSuggestions returns autocomplete suggestions for a
// subject search term.
func (h *Handlers) SearchEmailSuggestions(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	if search == "" {
		httputil.BadRequest(w, "search is required")
		return
	}
	suggestions, err := h.upstream.SearchEmailSuggestions(r.Context(), search)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, suggestions)
}

// GetEvents returns recent open/click events for the query filters.
func (h *Handlers) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.upstream.GetEvents(r.Context(), filtersFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, events)
}

// filtersFromQuery maps request query params onto upstream filters.
func filtersFromQuery(r *http.Request) mauticmail.Filters {
	q := r.URL.Query()
	filters := mauticmail.Filters{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		AccountID: q.Get("accountId"),
		EmailID:   q.Get("emailId"),
		Search:    q.Get("search"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filters.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filters.Limit = limit
	}
	return filters
}
