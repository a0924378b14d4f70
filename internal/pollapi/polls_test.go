package pollapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/Guizzs26/polls_client/internal/model"
)

// pollsHandler serves total polls, paginated with skip/limit.
func pollsHandler(t *testing.T, total int, pages *[]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/polls" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if pages != nil {
			*pages = append(*pages, r.URL.RawQuery)
		}

		polls := []model.Poll{}
		for i := skip; i < skip+limit && i < total; i++ {
			polls = append(polls, model.Poll{ID: i + 1, Question: "Q" + strconv.Itoa(i+1)})
		}
		writeJSON(w, http.StatusOK, polls)
	}
}

func TestListPolls(t *testing.T) {
	var pages []string
	c, _ := newTestClient(t, pollsHandler(t, 25, &pages))

	polls, err := c.ListPolls(context.Background(), 20, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(polls) != 5 {
		t.Fatalf("got %d polls, want 5", len(polls))
	}
	if polls[0].ID != 21 {
		t.Errorf("first poll id = %d, want 21", polls[0].ID)
	}
	if pages[0] != "limit=10&skip=20" {
		t.Errorf("query = %q", pages[0])
	}
}

func TestListPolls_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail": "Not Found"}`)
	})

	_, err := c.ListPolls(context.Background(), 0, 10)
	if err == nil || err.Error() != "Polls endpoint not found" {
		t.Errorf("expected 'Polls endpoint not found', got %v", err)
	}
	if StatusCode(err) != http.StatusNotFound {
		t.Errorf("status = %d", StatusCode(err))
	}
}

func TestListPolls_OtherErrorsNormalized(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.ListPolls(context.Background(), 0, 10)
	if err == nil || err.Error() != "HTTP 503: Service Unavailable" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFetchAllPolls(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		batch     int
		wantPages int
	}{
		{"empty", 0, 5, 1},
		{"short last page", 12, 5, 3},
		{"exact multiple", 10, 5, 3},
		{"default batch", 15, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pages []string
			c, _ := newTestClient(t, pollsHandler(t, tt.total, &pages))

			polls, err := c.FetchAllPolls(context.Background(), tt.batch)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(polls) != tt.total {
				t.Errorf("got %d polls, want %d", len(polls), tt.total)
			}
			if len(pages) != tt.wantPages {
				t.Errorf("got %d requests, want %d (%v)", len(pages), tt.wantPages, pages)
			}
			for i, p := range polls {
				if p.ID != i+1 {
					t.Fatalf("poll %d has id %d, order not preserved", i, p.ID)
				}
			}
		})
	}
}

func TestRegisterUser(t *testing.T) {
	var got model.Credentials
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/register" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, model.User{ID: 5, Username: got.Username})
	})

	user, err := c.RegisterUser(context.Background(), "john_doe", "secure_password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 5 || user.Username != "john_doe" {
		t.Errorf("unexpected user: %+v", user)
	}
	if got.Password != "secure_password123" {
		t.Errorf("password not sent")
	}
}

func TestRegisterUser_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"duplicate with detail", http.StatusBadRequest, `{"detail": "Username taken"}`, "Registration failed: Username taken"},
		{"bad request without body", http.StatusBadRequest, ``, "Registration failed: Username already registered"},
		{"server error", http.StatusInternalServerError, `{"detail": "db down"}`, "db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.RegisterUser(context.Background(), "u", "p")
			if err == nil || err.Error() != tt.wantMessage {
				t.Errorf("message = %v, want %q", err, tt.wantMessage)
			}
		})
	}
}
