package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/repokit/internal/domain"
	"github.com/bft-labs/repokit/pkg/failure"
	"github.com/bft-labs/repokit/pkg/repository"
)

// notesServer is a minimal in-memory notes API.
type notesServer struct {
	mu       sync.Mutex
	notes    map[string]domain.NoteModel
	requests []string
	auth     string
}

func newNotesServer(notes ...domain.NoteModel) *notesServer {
	s := &notesServer{notes: map[string]domain.NoteModel{}}
	for _, n := range notes {
		s.notes[n.ID] = n
	}
	return s
}

func (s *notesServer) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
	s.auth = r.Header.Get("Authorization")

	id := strings.TrimPrefix(r.URL.Path, "/v1/notes")
	id = strings.TrimPrefix(id, "/")

	switch {
	case r.Method == nethttp.MethodGet && id == "":
		out := []domain.NoteModel{}
		for _, n := range s.notes {
			if q := r.URL.Query().Get("q"); q != "" && !strings.Contains(n.Title, q) {
				continue
			}
			out = append(out, n)
		}
		json.NewEncoder(w).Encode(out)
	case r.Method == nethttp.MethodGet:
		n, ok := s.notes[id]
		if !ok {
			w.WriteHeader(nethttp.StatusNotFound)
			io.WriteString(w, `{"message":"note not found"}`)
			return
		}
		json.NewEncoder(w).Encode(n)
	case r.Method == nethttp.MethodPost, r.Method == nethttp.MethodPut:
		var n domain.NoteModel
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			w.WriteHeader(nethttp.StatusBadRequest)
			return
		}
		n.UpdatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		s.notes[n.ID] = n
		if r.Method == nethttp.MethodPost {
			w.WriteHeader(nethttp.StatusCreated)
		}
		json.NewEncoder(w).Encode(n)
	case r.Method == nethttp.MethodDelete:
		if _, ok := s.notes[id]; !ok {
			w.WriteHeader(nethttp.StatusNotFound)
			return
		}
		delete(s.notes, id)
		w.WriteHeader(nethttp.StatusNoContent)
	default:
		w.WriteHeader(nethttp.StatusMethodNotAllowed)
	}
}

func newTestSource(t *testing.T, h nethttp.Handler) *Source[domain.NoteModel] {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s, err := NewSource(Config[domain.NoteModel]{
		BaseURL:  srv.URL + "/v1/",
		Resource: "notes",
		AuthKey:  "secret",
		IDOf:     domain.NoteModelID,
	}, srv.Client(), nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	return s
}

func TestNewSource_RequiresConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config[domain.NoteModel]
	}{
		{"no base url", Config[domain.NoteModel]{Resource: "notes", IDOf: domain.NoteModelID}},
		{"no resource", Config[domain.NoteModel]{BaseURL: "http://x", IDOf: domain.NoteModelID}},
		{"no id func", Config[domain.NoteModel]{BaseURL: "http://x", Resource: "notes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSource(tt.cfg, nil, nil); err == nil {
				t.Error("NewSource() error = nil, want error")
			}
		})
	}
}

func TestSource_CRUD(t *testing.T) {
	ctx := context.Background()
	srv := newNotesServer(domain.NoteModel{ID: "1", Title: "first"})
	s := newTestSource(t, srv)

	all, err := s.GetAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("GetAll() = %v, %v", all, err)
	}
	if srv.auth != "Bearer secret" {
		t.Errorf("Authorization = %q, want bearer token", srv.auth)
	}

	created, err := s.Create(ctx, domain.NoteModel{ID: "2", Title: "second"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.UpdatedAt.IsZero() {
		t.Error("Create() did not return the stored model")
	}

	updated, err := s.Update(ctx, domain.NoteModel{ID: "2", Title: "renamed"})
	if err != nil || updated.Title != "renamed" {
		t.Fatalf("Update() = %v, %v", updated, err)
	}

	got, err := s.GetByID(ctx, "2")
	if err != nil || got.Title != "renamed" {
		t.Fatalf("GetByID() = %v, %v", got, err)
	}

	if err := s.Delete(ctx, "2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []string{"GET /v1/notes", "POST /v1/notes", "PUT /v1/notes/2", "GET /v1/notes/2", "DELETE /v1/notes/2"}
	if strings.Join(srv.requests, ",") != strings.Join(want, ",") {
		t.Errorf("requests = %v, want %v", srv.requests, want)
	}
}

func TestSource_QueryParameters(t *testing.T) {
	ctx := context.Background()
	srv := newNotesServer()
	s := newTestSource(t, srv)

	s.Search(ctx, "milk & eggs")
	s.GetPaginated(ctx, repository.PageRequest{Page: 2, Limit: 20, SortBy: "title", Descending: true})

	want := []string{
		"GET /v1/notes?q=milk+%26+eggs",
		"GET /v1/notes?limit=20&order=desc&page=2&sort=title",
	}
	if strings.Join(srv.requests, ",") != strings.Join(want, ",") {
		t.Errorf("requests = %v, want %v", srv.requests, want)
	}
}

func TestSource_ErrorResponseIsClassified(t *testing.T) {
	s := newTestSource(t, newNotesServer())

	_, err := s.GetByID(context.Background(), "missing")

	var te *failure.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %T %v, want *failure.TransportError", err, err)
	}
	if te.StatusCode != nethttp.StatusNotFound {
		t.Errorf("status = %d, want 404", te.StatusCode)
	}

	f := failure.Classify(err)
	if f.Code != failure.CodeNotFound {
		t.Errorf("code = %v, want not_found", f.Code)
	}
	if f.Message != "note not found" {
		t.Errorf("message = %q, want server message", f.Message)
	}
}

func TestSource_ValidatesBeforeSending(t *testing.T) {
	srv := newNotesServer()
	s := newTestSource(t, srv)

	_, err := s.Create(context.Background(), domain.NoteModel{ID: "1"})
	if err == nil {
		t.Fatal("Create() error = nil, want validation error")
	}
	if len(srv.requests) != 0 {
		t.Errorf("invalid model was sent: %v", srv.requests)
	}

	f := failure.Classify(err)
	if f.Kind != failure.KindValidation {
		t.Fatalf("kind = %v, want validation", f.Kind)
	}
	if f.Fields["title"] != "is required" {
		t.Errorf("fields = %v, want title required", f.Fields)
	}
}

func TestSource_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(newNotesServer())
	base := srv.URL
	srv.Close()

	s, err := NewSource(Config[domain.NoteModel]{BaseURL: base, Resource: "notes", IDOf: domain.NoteModelID}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.GetAll(context.Background())
	var te *failure.TransportError
	if !errors.As(err, &te) || te.Kind != failure.TransportConnectionError {
		t.Fatalf("error = %v, want connection error", err)
	}
	if got := failure.Classify(err).Code; got != failure.CodeNoConnection {
		t.Errorf("code = %v, want no_connection", got)
	}
}

func TestSource_CancelledContext(t *testing.T) {
	s := newTestSource(t, newNotesServer())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetAll(ctx)
	var te *failure.TransportError
	if !errors.As(err, &te) || te.Kind != failure.TransportCancelled {
		t.Fatalf("error = %v, want cancelled transport error", err)
	}
}

func TestSource_Timeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := &nethttp.Client{Timeout: 20 * time.Millisecond}
	s, err := NewSource(Config[domain.NoteModel]{BaseURL: srv.URL, Resource: "notes", IDOf: domain.NoteModelID}, client, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.GetAll(context.Background())
	if got := failure.Classify(err).Code; got != failure.CodeTimeout {
		t.Errorf("code = %v, want timeout (err = %v)", got, err)
	}
}

func TestSource_EmptyBody(t *testing.T) {
	bodies := map[string]string{"empty": "", "null": "null", "padded null": " null\n"}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, body)
			}))
			defer srv.Close()

			s, err := NewSource(Config[domain.NoteModel]{BaseURL: srv.URL, Resource: "notes", IDOf: domain.NoteModelID}, nil, nil)
			if err != nil {
				t.Fatal(err)
			}

			if _, err := s.GetByID(context.Background(), "1"); !errors.Is(err, failure.ErrNoData) {
				t.Errorf("GetByID() error = %v, want ErrNoData", err)
			}
			if _, err := s.Create(context.Background(), domain.NoteModel{ID: "1", Title: "t"}); !errors.Is(err, failure.ErrNoData) {
				t.Errorf("Create() error = %v, want ErrNoData", err)
			}
			if all, err := s.GetAll(context.Background()); err != nil || len(all) != 0 {
				t.Errorf("GetAll() = %v, %v, want empty list", all, err)
			}

			repo, err := repository.New(repository.Config[domain.Note, domain.NoteModel]{
				Strategy: repository.RemoteOnly,
				Remote:   s,
				ToModel:  domain.NoteToModel,
			})
			if err != nil {
				t.Fatal(err)
			}
			res := repo.GetByID(context.Background(), "1")
			if !res.IsError() {
				t.Fatalf("GetByID() = %v, want Error", res)
			}
			f := res.Failure()
			if f.Code != failure.CodeClientError || f.Message != failure.NoDataMessage {
				t.Errorf("Failure() = %v, want client error with no-data message", f)
			}
		})
	}
}
