package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/service"
	"github.com/tripdesk/tripdesk/internal/settle"
	"github.com/tripdesk/tripdesk/internal/storage/sqlite"
)

// stubCompleter returns a canned assistant reply.
type stubCompleter struct {
	reply string
}

func (s *stubCompleter) Complete(_ context.Context, _ []*models.Message) (string, error) {
	return s.reply, nil
}

// setupTestServer starts an httptest server over a temp SQLite database.
func setupTestServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "tripdesk-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-key-for-tests", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	srv := New(
		service.NewAuthService(authenticator, jwtManager),
		service.NewChatService(store, &stubCompleter{reply: reply}),
		service.NewSplitService(store),
		service.NewTicketService(store),
		jwtManager,
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON issues a request with an optional Bearer token and decodes the
// response body into out (when out is non-nil).
func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp
}

func register(t *testing.T, baseURL, email string) string {
	t.Helper()
	var reg authResponse
	resp := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "",
		map[string]string{"email": email, "name": "Test User", "password": "hunter2hunter2"}, &reg)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Register returned %d", resp.StatusCode)
	}
	if reg.Token == "" {
		t.Fatal("Expected a token from register")
	}
	return reg.Token
}

func TestServer_EndToEnd(t *testing.T) {
	reply := "Found one.\n\n[[FLIGHT_DATA]]\n```json\n" +
		`{"flights": [{"from": "New York", "to": "Paris", "departure": "2025-06-15T18:30:00Z", "arrival": "2025-06-16T07:45:00Z", "airline": "Air France", "number": "AF007", "cost": {"amount": 645.5, "currency": "USD"}}]}` +
		"\n```"
	ts := setupTestServer(t, reply)
	token := register(t, ts.URL, "alice@example.com")

	t.Run("login returns a fresh token", func(t *testing.T) {
		var login authResponse
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/auth/login", "",
			map[string]string{"email": "alice@example.com", "password": "hunter2hunter2"}, &login)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Login returned %d", resp.StatusCode)
		}
		if login.Token == "" || login.User.Email != "alice@example.com" {
			t.Errorf("Unexpected login response: %+v", login)
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/auth/login", "",
			map[string]string{"email": "alice@example.com", "password": "wrong-password"}, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("sessions require a token", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/sessions", "", nil, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", resp.StatusCode)
		}
	})

	var session models.Session
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions", token,
		map[string]string{"title": ""}, &session)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("StartSession returned %d", resp.StatusCode)
	}
	sessionURL := fmt.Sprintf("%s/api/v1/sessions/%s", ts.URL, session.ID)

	t.Run("message round trip extracts flights", func(t *testing.T) {
		var out sendMessageResponse
		resp := doJSON(t, http.MethodPost, sessionURL+"/messages", token,
			map[string]string{"content": "Flights to Paris please"}, &out)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("SendMessage returned %d", resp.StatusCode)
		}
		if out.Message.Content != "Found one." {
			t.Errorf("Expected cleaned reply, got %q", out.Message.Content)
		}
		if len(out.Flights) != 1 || out.Flights[0].Number != "AF007" {
			t.Errorf("Unexpected flights: %+v", out.Flights)
		}

		var list struct {
			Flights []*models.Flight `json:"flights"`
		}
		resp = doJSON(t, http.MethodGet, sessionURL+"/flights", token, nil, &list)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("ListFlights returned %d", resp.StatusCode)
		}
		if len(list.Flights) != 1 || list.Flights[0].Cost == nil || list.Flights[0].Cost.Amount != 645.5 {
			t.Errorf("Unexpected stored flights: %+v", list.Flights)
		}
	})

	t.Run("expenses and splits", func(t *testing.T) {
		var created models.Expense
		resp := doJSON(t, http.MethodPost, sessionURL+"/expenses", token,
			models.Expense{
				Description:  "Dinner",
				Amount:       90,
				PaidBy:       "Alice",
				SplitBetween: []string{"Alice", "Bob", "Carol"},
			}, &created)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("AddExpense returned %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodPost, sessionURL+"/expenses", token,
			models.Expense{Description: "Bad", Amount: -5, PaidBy: "Alice", SplitBetween: []string{"Alice"}}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400 for invalid expense, got %d", resp.StatusCode)
		}

		var splits splitsResponse
		resp = doJSON(t, http.MethodGet, sessionURL+"/splits", token, nil, &splits)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GetSplits returned %d", resp.StatusCode)
		}
		if len(splits.Settlements) != 2 {
			t.Fatalf("Expected 2 settlements, got %+v", splits.Settlements)
		}
		want := settle.Settlement{From: "Bob", To: "Alice", Amount: 30, Currency: "USD"}
		if splits.Settlements[0] != want {
			t.Errorf("got %+v, want %+v", splits.Settlements[0], want)
		}

		resp = doJSON(t, http.MethodDelete,
			fmt.Sprintf("%s/expenses/%s", sessionURL, created.ID), token, nil, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("RemoveExpense returned %d", resp.StatusCode)
		}
	})

	t.Run("another user cannot touch the session", func(t *testing.T) {
		otherToken := register(t, ts.URL, "bob@example.com")
		resp := doJSON(t, http.MethodGet, sessionURL, otherToken, nil, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("delete session cascades", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, sessionURL, token, nil, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("DeleteSession returned %d", resp.StatusCode)
		}
		resp = doJSON(t, http.MethodGet, sessionURL, token, nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/healthz", "", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200, got %d", resp.StatusCode)
		}
	})
}

func TestServer_RegisterValidation(t *testing.T) {
	ts := setupTestServer(t, "ok")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/auth/register", "",
		map[string]string{"email": "short@example.com", "name": "S", "password": "short"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for weak password, got %d", resp.StatusCode)
	}

	register(t, ts.URL, "dup@example.com")
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/auth/register", "",
		map[string]string{"email": "dup@example.com", "name": "Dup", "password": "hunter2hunter2"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate email, got %d", resp.StatusCode)
	}
}
