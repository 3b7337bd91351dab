package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tabsplit/tabsplit/internal/fx"
	"github.com/tabsplit/tabsplit/internal/service"
	"github.com/tabsplit/tabsplit/internal/storage/sqlite"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	rates := fx.Table{}
	rates.Set("EUR", "USD", decimal.RequireFromString("2"))
	source := fx.Static(rates)

	srv := New(
		service.NewGroupService(store),
		service.NewExpenseService(store, source),
		service.NewSettlementService(store),
		service.NewBalanceService(store, source),
	)
	return srv.Router()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestAPIFlow(t *testing.T) {
	handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/groups", map[string]any{
		"name":          "Trip",
		"base_currency": "USD",
		"members": []map[string]string{
			{"user_id": "alice", "display_name": "Alice"},
			{"user_id": "bob", "display_name": "Bob"},
			{"user_id": "carol", "display_name": "Carol"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group: status %d, body %s", rec.Code, rec.Body)
	}
	var group groupResponse
	decodeInto(t, rec, &group)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", map[string]any{
		"description": "Dinner",
		"amount":      "90.00",
		"currency":    "USD",
		"payer_id":    "alice",
		"splits": []map[string]string{
			{"user_id": "alice", "amount": "30.00"},
			{"user_id": "bob", "amount": "30.00"},
			{"user_id": "carol", "amount": "30.00"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/groups/"+group.ID+"/balances", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get balances: status %d, body %s", rec.Code, rec.Body)
	}
	var balances balancesResponse
	decodeInto(t, rec, &balances)
	if len(balances.Plans["USD"]) != 2 {
		t.Fatalf("plan = %v, want 2 payments", balances.Plans["USD"])
	}

	settle := map[string]any{
		"from_user_id": "bob",
		"to_user_id":   "alice",
		"amount":       "30.00",
		"currency":     "USD",
		"created_by":   "bob",
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/groups/"+group.ID+"/settlements", settle)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record settlement: status %d, body %s", rec.Code, rec.Body)
	}
	var first recordSettlementResponse
	decodeInto(t, rec, &first)
	if !first.Recorded || first.Settlement == nil {
		t.Fatalf("first settlement not recorded: %+v", first)
	}

	// Same payment again is acknowledged but not duplicated.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/groups/"+group.ID+"/settlements", settle)
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate settlement: status %d, body %s", rec.Code, rec.Body)
	}
	var second recordSettlementResponse
	decodeInto(t, rec, &second)
	if second.Recorded {
		t.Fatal("duplicate settlement was recorded twice")
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/groups/"+group.ID+"/balances", nil)
	decodeInto(t, rec, &balances)
	if len(balances.Plans["USD"]) != 1 {
		t.Fatalf("plan after settlement = %v, want 1 payment", balances.Plans["USD"])
	}
}

func TestAPIErrors(t *testing.T) {
	handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/groups/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing group: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/groups", map[string]any{"name": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty group name: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/groups", map[string]any{
		"name":          "Trip",
		"base_currency": "USD",
		"members":       []map[string]string{{"user_id": "alice"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group: status %d", rec.Code)
	}
	var group groupResponse
	decodeInto(t, rec, &group)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", map[string]any{
		"amount":   "-5",
		"currency": "USD",
		"payer_id": "alice",
		"splits":   []map[string]string{{"user_id": "alice", "amount": "-5"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative expense: status %d, want 400, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/groups/"+group.ID+"/balances/reconciled", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reconciled without currency: status %d, want 400", rec.Code)
	}
}
