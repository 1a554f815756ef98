package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/appuser"
	appuserhandler "gatehouse/internal/appuser/handler"
	"gatehouse/internal/audit"
	audithandler "gatehouse/internal/audit/handler"
	"gatehouse/internal/errorlog"
	errorloghandler "gatehouse/internal/errorlog/handler"
	selfservicehandler "gatehouse/internal/selfservice/handler"
	"gatehouse/internal/selfservice/tokenindex"
	"gatehouse/internal/settings"
	settingshandler "gatehouse/internal/settings/handler"
	"gatehouse/internal/visitor"
	visitorhandler "gatehouse/internal/visitor/handler"
	"gatehouse/pkg/testutil"
)

// newTestRouter wires the full HTTP surface over in-memory stores, the same
// shape main builds minus the durable backends.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	userStore := appuser.NewInMemoryStore()
	auditSvc := audit.NewService(audit.NewInMemoryStore(), log, nil)
	errlogSvc := errorlog.NewService(errorlog.NewInMemoryStore(), log)
	auditSvc.SetFailureRecorder(errlogSvc)
	userSvc := appuser.NewService(userStore, auditSvc, log, nil)
	settingsSvc := settings.NewService(settings.NewInMemoryStore(), auditSvc, log)
	visitorSvc := visitor.NewService(visitor.NewInMemoryStore(), auditSvc, log, nil, "VIS",
		visitor.WithTokenIndex(tokenindex.NewMemoryIndex()))

	require.NoError(t, appuser.SeedBootstrapAdmin(context.Background(), userStore, "admin", "admin123", log))

	return NewRouter(log, nil,
		appuserhandler.New(userSvc, log),
		visitorhandler.New(visitorSvc, log),
		selfservicehandler.New(visitorSvc, settingsSvc, log),
		settingshandler.New(settingsSvc, log),
		audithandler.New(auditSvc, log),
		errorloghandler.New(errlogSvc, log),
	)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	body := testutil.UnmarshalResponse[map[string]string](t, rr)
	assert.Equal(t, "ok", (*body)["status"])
	assert.NotEmpty(t, (*body)["timestamp"])
}

// End-to-end over the wired router: login, check a visitor in and out, and
// confirm the audit trail saw all of it.
func TestVisitorLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/users/login", map[string]any{
		"username":   "admin",
		"credential": "admin123",
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	login := testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	require.True(t, login.Success(), "body: %s", rr.Body.String())

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/visitors/check-in", map[string]any{
		"fullName":   "Grace Hopper",
		"type":       "visitor",
		"recordedBy": "admin",
	}))
	checkIn := testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	require.True(t, checkIn.Success(), "body: %s", rr.Body.String())
	recordID, _ := (*checkIn)["recordId"].(string)
	require.NotEmpty(t, recordID)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/visitors/stats"))
	stats := testutil.UnmarshalResponse[visitor.DailyStats](t, rr)
	assert.Equal(t, 1, stats.TodayIn)
	assert.Equal(t, 1, stats.Pending)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/visitors/check-out", map[string]any{
		"recordId": recordID,
		"actorId":  "admin",
	}))
	checkOut := testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	require.True(t, checkOut.Success(), "body: %s", rr.Body.String())

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/visitors/"+recordID))
	record := testutil.UnmarshalResponse[visitor.Record](t, rr)
	assert.Equal(t, visitor.StatusOut, record.Status)
	require.NotNil(t, record.CheckOutTime)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/audit-logs"))
	require.Equal(t, http.StatusOK, rr.Code)
	entries := testutil.UnmarshalResponse[[]audit.Entry](t, rr)
	actions := []audit.Action{}
	for _, e := range *entries {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []audit.Action{audit.ActionCheckOut, audit.ActionCheckIn, audit.ActionUserLogin}, actions)
}

func TestRecoveryMiddlewareTurnsPanicInto500(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(log, nil, panicRegistrar{})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/boom"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

type panicRegistrar struct{}

func (panicRegistrar) Register(r chi.Router) {
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
}
