package integration

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/auth"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/config"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/server"
	internalws "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/ws"
	"golang.org/x/net/websocket"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(_ context.Context) error {
	return p.err
}

func newTestRouter(pinger fakePinger, hub *internalws.Hub, jwtManager *auth.JWTManager) http.Handler {
	deps := server.Dependencies{
		Pinger:     pinger,
		JWTManager: jwtManager,
	}
	if hub != nil {
		deps.WSHandler = internalws.NewHandler(hub)
	}
	return server.NewRouter(config.Config{Env: "test"}, slog.Default(), deps)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(fakePinger{}, nil, auth.NewJWTManager("i", "a", "k"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestReadyEndpointDBFailure(t *testing.T) {
	r := newTestRouter(fakePinger{err: errors.New("db down")}, nil, auth.NewJWTManager("i", "a", "k"))

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	r := newTestRouter(fakePinger{}, nil, auth.NewJWTManager("i", "a", "k"))

	req := httptest.NewRequest(http.MethodGet, "/v1/organizations", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestPartnerTokenRejectedOnStaffRoute(t *testing.T) {
	jwtManager := auth.NewJWTManager("i", "a", "k")
	r := newTestRouter(fakePinger{}, nil, jwtManager)

	tok, err := jwtManager.Mint(auth.Claims{UserID: 1, Role: auth.RolePartnerAdmin, OrganizationID: 9, Type: auth.TokenTypePartner}, 5*time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/organizations", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for partner token on staff route, got %d", w.Code)
	}
}

// Clients are written against the documented method and path spellings;
// every route below must resolve to a handler (401 from the auth
// middleware, or 400 from binding on the public invite endpoints) rather
// than fall through to the 404 catch-all.
func TestEndpointSpellings(t *testing.T) {
	r := newTestRouter(fakePinger{}, nil, auth.NewJWTManager("i", "a", "k"))

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/v1/loan-applications", http.StatusUnauthorized},
		{http.MethodGet, "/v1/loan-applications", http.StatusUnauthorized},
		{http.MethodPatch, "/v1/loan-applications/1/status", http.StatusUnauthorized},
		{http.MethodGet, "/v1/repayments/loan/1", http.StatusUnauthorized},
		{http.MethodPatch, "/v1/repayments/1/pay", http.StatusUnauthorized},
		{http.MethodPatch, "/v1/repayments/1/reverse", http.StatusUnauthorized},
		{http.MethodPost, "/v1/disbursements/application/1", http.StatusUnauthorized},
		{http.MethodPost, "/v1/remittance/ingest", http.StatusUnauthorized},
		{http.MethodGet, "/v1/remittance-accounts", http.StatusUnauthorized},
		{http.MethodGet, "/v1/admin/remittances/transactions", http.StatusUnauthorized},
		{http.MethodGet, "/v1/admin/remittances/transactions/1/allocations", http.StatusUnauthorized},
		{http.MethodPost, "/v1/admin/remittances/transactions/1/apply", http.StatusUnauthorized},
		{http.MethodPost, "/v1/admin/remittances/transactions/1/reverse", http.StatusUnauthorized},
		{http.MethodGet, "/v1/admin/remittances/summary?organization_id=1", http.StatusUnauthorized},
		{http.MethodGet, "/v1/reports/org-monthly?organization_id=1", http.StatusUnauthorized},
		{http.MethodGet, "/v1/reports/org-monthly-v2?organization_id=1", http.StatusUnauthorized},
		{http.MethodGet, "/v1/reports/org-monthly-v2/export?organization_id=1", http.StatusUnauthorized},
		{http.MethodGet, "/v1/dashboard/summary", http.StatusUnauthorized},
		{http.MethodPost, "/v1/partner/invite/create", http.StatusUnauthorized},
		{http.MethodPost, "/v1/partner/invite/validate", http.StatusBadRequest},
		{http.MethodPost, "/v1/partner/invite/complete", http.StatusBadRequest},
		{http.MethodPost, "/v1/partner/auth/login", http.StatusBadRequest},
		{http.MethodGet, "/v1/partner/dashboard/me", http.StatusUnauthorized},
		{http.MethodPost, "/v1/partner/dashboard/remit", http.StatusUnauthorized},
		{http.MethodGet, "/v1/partner/dashboard/monthly-due", http.StatusUnauthorized},
		{http.MethodGet, "/v1/partner/dashboard/staff-loans", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s %s: got %d, want %d", tc.method, tc.path, w.Code, tc.want)
		}
	}
}

// The live feed authenticates with the token in the query string and
// receives remittance events for subscribed topics.
func TestWebSocketRemittanceFeed(t *testing.T) {
	jwtManager := auth.NewJWTManager("issuer", "aud", "super-secret")
	hub := internalws.NewHub()
	r := newTestRouter(fakePinger{}, hub, jwtManager)

	ts := httptest.NewServer(r)
	defer ts.Close()

	tok, err := jwtManager.Mint(auth.Claims{UserID: 1, Role: auth.RoleAdmin, Type: auth.TokenTypeStaff}, 5*time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/remittances?token=" + tok
	conn, err := websocket.Dial(wsURL, "", ts.URL)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	if err := websocket.Message.Send(conn, `{"action":"subscribe","channel":"remittances"}`); err != nil {
		t.Fatalf("send subscribe: %v", err)
	}

	broadcaster := internalws.NewBroadcaster(hub)
	event := remittance.Event{
		Type:           remittance.EventApplied,
		TransactionID:  7,
		OrganizationID: 9,
		Reference:      "BANK-REF-1",
		MatchStatus:    remittance.StatusMatched,
		At:             time.Now().UTC(),
	}

	// The subscribe message is handled asynchronously; republish until
	// the client sees it.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				broadcaster.Publish(event)
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var raw string
	if err := websocket.Message.Receive(conn, &raw); err != nil {
		t.Fatalf("receive: %v", err)
	}

	var payload struct {
		Event string `json:"event"`
		Data  struct {
			TransactionID int64  `json:"transaction_id"`
			MatchStatus   string `json:"match_status"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Event != remittance.EventApplied || payload.Data.TransactionID != 7 {
		t.Fatalf("unexpected payload: %s", raw)
	}
	if payload.Data.MatchStatus != remittance.StatusMatched {
		t.Fatalf("unexpected match status: %s", raw)
	}
}
