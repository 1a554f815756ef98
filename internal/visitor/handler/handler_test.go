package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/audit"
	"gatehouse/internal/visitor"
	"gatehouse/pkg/testutil"
)

func newVisitorHandler(t *testing.T) (http.Handler, *visitor.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditSvc := audit.NewService(audit.NewInMemoryStore(), logger, nil)
	svc := visitor.NewService(visitor.NewInMemoryStore(), auditSvc, logger, nil, "VIS")

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r, svc
}

func checkInBody(fullName string) map[string]any {
	return map[string]any{
		"fullName":   fullName,
		"type":       "visitor",
		"recordedBy": "reception",
	}
}

func TestCheckInEndpoint(t *testing.T) {
	h, _ := newVisitorHandler(t)

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/api/visitors/check-in", checkInBody("Grace Hopper")))
	require.Equal(t, http.StatusOK, rr.Code)

	env := testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	require.True(t, env.Success(), "body: %s", rr.Body.String())
	recordID, _ := (*env)["recordId"].(string)
	assert.NotEmpty(t, recordID)
}

func TestCheckInEndpointValidationFailure(t *testing.T) {
	h, _ := newVisitorHandler(t)

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/api/visitors/check-in", map[string]any{
		"recordedBy": "reception",
	}))
	// Business failures stay HTTP 200 with success=false.
	require.Equal(t, http.StatusOK, rr.Code)
	env := testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	assert.False(t, env.Success())
	assert.Equal(t, "fullName is required", env.Error())
}

func TestCheckOutEndpoint(t *testing.T) {
	h, svc := newVisitorHandler(t)

	record, err := svc.CheckIn(context.Background(), visitor.Record{FullName: "Grace Hopper", RecordedBy: "reception"})
	require.NoError(t, err)

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/api/visitors/check-out", map[string]any{
		"recordId": record.RecordID,
		"actorId":  "reception",
	}))
	env := testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	require.True(t, env.Success())

	// A second checkout is a business failure, still HTTP 200.
	rr = testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/api/visitors/check-out", map[string]any{
		"recordId": record.RecordID,
		"actorId":  "reception",
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	env = testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	assert.False(t, env.Success())
	assert.Equal(t, "visitor already checked out", env.Error())
}

func TestListAndActiveEndpoints(t *testing.T) {
	h, svc := newVisitorHandler(t)

	first, err := svc.CheckIn(context.Background(), visitor.Record{FullName: "Grace Hopper", RecordedBy: "reception"})
	require.NoError(t, err)
	_, err = svc.CheckIn(context.Background(), visitor.Record{FullName: "Ada Lovelace", RecordedBy: "reception"})
	require.NoError(t, err)
	require.NoError(t, svc.CheckOut(context.Background(), first.RecordID, "reception"))

	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/api/visitors/"))
	all := testutil.UnmarshalResponse[[]visitor.Record](t, rr)
	assert.Len(t, *all, 2)

	rr = testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/api/visitors/active"))
	active := testutil.UnmarshalResponse[[]visitor.Record](t, rr)
	require.Len(t, *active, 1)
	assert.Equal(t, "Ada Lovelace", (*active)[0].FullName)
}

func TestGetByIDReturnsNullForUnknownRecord(t *testing.T) {
	h, _ := newVisitorHandler(t)

	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/api/visitors/VIS-missing"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null\n", rr.Body.String())
}

func TestUpdateEndpointPatchesOnlyProvidedFields(t *testing.T) {
	h, svc := newVisitorHandler(t)

	record, err := svc.CheckIn(context.Background(), visitor.Record{
		FullName:   "Grace Hopper",
		RecordedBy: "reception",
		Company:    "Navy",
	})
	require.NoError(t, err)

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/api/visitors/update", map[string]any{
		"recordId": record.RecordID,
		"actorId":  "reception",
		"purpose":  "audit meeting",
	}))
	env := testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	require.True(t, env.Success(), "body: %s", rr.Body.String())

	got, err := svc.GetByRecordID(context.Background(), record.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "audit meeting", got.Purpose)
	assert.Equal(t, "Navy", got.Company, "absent fields are untouched")
}

func TestDeleteEndpoint(t *testing.T) {
	h, svc := newVisitorHandler(t)

	record, err := svc.CheckIn(context.Background(), visitor.Record{FullName: "Grace Hopper", RecordedBy: "reception"})
	require.NoError(t, err)

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/api/visitors/delete", map[string]any{
		"recordId": record.RecordID,
		"actorId":  "admin",
	}))
	env := testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	require.True(t, env.Success())

	rr = testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/api/visitors/"))
	all := testutil.UnmarshalResponse[[]visitor.Record](t, rr)
	assert.Empty(t, *all)
}

func TestStatsEndpoint(t *testing.T) {
	h, svc := newVisitorHandler(t)

	_, err := svc.CheckIn(context.Background(), visitor.Record{FullName: "Grace Hopper", RecordedBy: "reception"})
	require.NoError(t, err)

	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/api/visitors/stats"))
	stats := testutil.UnmarshalResponse[visitor.DailyStats](t, rr)
	assert.Equal(t, 1, stats.TodayIn)
	assert.Equal(t, 0, stats.TodayOut)
	assert.Equal(t, 1, stats.Pending)
}

func TestInvalidJSONBody(t *testing.T) {
	h, _ := newVisitorHandler(t)

	req := testutil.NewRequest(t, http.MethodPost, "/api/visitors/check-in")
	rr := testutil.DoRequest(h, req)
	env := testutil.UnmarshalResponse[testutil.Envelope](t, rr)
	assert.False(t, env.Success())
	assert.Equal(t, "invalid request body", env.Error())
}
