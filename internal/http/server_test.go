package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"butce/internal/core"
	"butce/internal/notify"
	"butce/internal/services"
	"butce/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	// Mirror the production wiring: refresh signals invalidate the
	// dashboard cache, so mutations are visible on the next GET.
	dashboards := services.NewDashboardService(st)
	dispatcher := notify.Fanout(notify.Nop{}, dashboards)
	budgets := services.NewBudgetService(st, dispatcher)
	deps := Services{
		Users:      services.NewUserService(st, dispatcher),
		Budgets:    budgets,
		Assets:     services.NewAssetService(st, budgets, dispatcher),
		Expenses:   services.NewExpenseService(st, dispatcher),
		Portfolio:  services.NewPortfolioService(st, dispatcher),
		Dashboards: dashboards,
		Store:      st,
	}
	srv := NewServer(":0", deps)
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return srv, st
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func createUser(t *testing.T, srv *Server, username, fullName string) {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/users", map[string]any{
		"username":  username,
		"full_name": fullName,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
}

func TestCreateCashAsset_ResponseCarriesBudget(t *testing.T) {
	srv, _ := newTestServer(t)
	createUser(t, srv, "esra", "Esra")

	rec := doRequest(t, srv, http.MethodPost, "/assets", map[string]any{
		"username": "esra",
		"name":     "düğün hesabı",
		"category": "Nakit",
		"amount":   "1",
		"value":    5000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if got := body["budget"]; got != float64(5000) {
		t.Errorf("budget = %v, want 5000 as a plain lira number", got)
	}
	asset, ok := body["asset"].(map[string]any)
	if !ok {
		t.Fatalf("missing asset in response: %v", body)
	}
	if asset["value"] != float64(5000) {
		t.Errorf("asset value = %v, want 5000", asset["value"])
	}
}

func TestPartnerFlow_SharedBudget(t *testing.T) {
	srv, _ := newTestServer(t)
	createUser(t, srv, "esra", "Esra")
	createUser(t, srv, "emre", "Emre")

	rec := doRequest(t, srv, http.MethodPost, "/users/esra/partner", map[string]any{"partner": "emre"})
	if rec.Code != http.StatusOK {
		t.Fatalf("link partner: status %d, body %s", rec.Code, rec.Body.String())
	}
	linked := decodeBody(t, rec)
	if linked["partner_username"] != "emre" {
		t.Errorf("partner = %v, want emre", linked["partner_username"])
	}

	// esra records cash; emre's budget must mirror it.
	doRequest(t, srv, http.MethodPost, "/assets", map[string]any{
		"username": "esra", "name": "nakit", "category": "Nakit", "amount": "1", "value": 5000,
	})
	rec = doRequest(t, srv, http.MethodGet, "/budget?username=emre", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get budget: status %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["amount"] != float64(5000) {
		t.Errorf("partner budget = %v, want 5000", body["amount"])
	}
}

func TestCreateExpense_BudgetUnchanged(t *testing.T) {
	srv, _ := newTestServer(t)
	createUser(t, srv, "esra", "Esra")

	doRequest(t, srv, http.MethodPost, "/assets", map[string]any{
		"username": "esra", "name": "nakit", "category": "Nakit", "amount": "1", "value": 8000,
	})

	rec := doRequest(t, srv, http.MethodPost, "/expenses", map[string]any{
		"username":    "esra",
		"description": "davetiye",
		"amount":      450,
		"date":        "2026-05-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["budget"] != float64(8000) {
		t.Errorf("budget = %v, want unchanged 8000", body["budget"])
	}
}

func TestDeleteAsset_BudgetDropsToZero(t *testing.T) {
	srv, _ := newTestServer(t)
	createUser(t, srv, "esra", "Esra")

	rec := doRequest(t, srv, http.MethodPost, "/assets", map[string]any{
		"username": "esra", "name": "nakit", "category": "Nakit", "amount": "1", "value": 1500,
	})
	body := decodeBody(t, rec)
	id := int64(body["asset"].(map[string]any)["id"].(float64))

	rec = doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/assets/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["budget"] != float64(0) {
		t.Errorf("budget = %v, want 0 after deleting the only cash asset", body["budget"])
	}
}

func TestSetBudget_PutOverwrites(t *testing.T) {
	srv, _ := newTestServer(t)
	createUser(t, srv, "esra", "Esra")

	rec := doRequest(t, srv, http.MethodPut, "/budget", map[string]any{
		"username": "esra",
		"amount":   1234.56,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["amount"] != float64(1234.56) {
		t.Errorf("amount = %v, want 1234.56", body["amount"])
	}
}

func TestDashboard_PortfolioToggle(t *testing.T) {
	srv, _ := newTestServer(t)
	createUser(t, srv, "esra", "Esra")

	doRequest(t, srv, http.MethodPost, "/portfolio", map[string]any{
		"username": "esra", "kind": "USD", "amount": "2", "rate": "2450.75",
	})

	rec := doRequest(t, srv, http.MethodGet, "/dashboard?username=esra", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["portfolio_value"] != float64(0) {
		t.Errorf("portfolio_value = %v, want 0 while toggle is off", body["portfolio_value"])
	}

	rec = doRequest(t, srv, http.MethodPut, "/users/esra/portfolio-in-budget", map[string]any{"included": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/dashboard?username=esra", nil)
	if body := decodeBody(t, rec); body["portfolio_value"] != float64(4901.5) {
		t.Errorf("portfolio_value = %v, want 4901.5", body["portfolio_value"])
	}
}

func TestValidationAndNotFoundStatuses(t *testing.T) {
	srv, _ := newTestServer(t)
	createUser(t, srv, "esra", "Esra")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"asset without name", http.MethodPost, "/assets", map[string]any{"username": "esra", "category": "Nakit", "value": 10}, http.StatusBadRequest},
		{"asset without username", http.MethodPost, "/assets", map[string]any{"name": "x", "category": "Nakit"}, http.StatusBadRequest},
		{"unknown asset", http.MethodGet, "/assets/999", nil, http.StatusNotFound},
		{"unknown user", http.MethodGet, "/users/kimse", nil, http.StatusNotFound},
		{"budget without username", http.MethodGet, "/budget", nil, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/assets/abc", nil, http.StatusBadRequest},
		{"self partner", http.MethodPost, "/users/esra/partner", map[string]any{"partner": "esra"}, http.StatusBadRequest},
		{"bad category kind", http.MethodGet, "/categories?kind=x", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	srv, st := newTestServer(t)
	createUser(t, srv, "esra", "Esra")

	n, err := st.CreateNotification(context.Background(), "esra", "Bütçe güncellendi")
	if err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/notifications?username=esra", nil)
	body := decodeBody(t, rec)
	list := body["notifications"].([]any)
	if len(list) != 1 {
		t.Fatalf("notifications = %d, want 1", len(list))
	}

	rec = doRequest(t, srv, http.MethodPost, fmt.Sprintf("/notifications/%d/read", n.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read: status %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/notifications?username=esra", nil)
	body = decodeBody(t, rec)
	first := body["notifications"].([]any)[0].(map[string]any)
	if first["read"] != true {
		t.Error("notification should be marked read")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, st := newTestServer(t)
	st.SeedCategories([]core.Category{{ID: 1, Name: "Nakit", Kind: "asset"}})

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}
}

func TestSecurityHeadersSet(t *testing.T) {
	srv, _ := newTestServer(t)
	createUser(t, srv, "esra", "Esra")

	rec := doRequest(t, srv, http.MethodGet, "/assets?username=esra", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
