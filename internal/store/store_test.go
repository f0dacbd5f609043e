package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func sampleRows() []map[string]any {
	return []map[string]any{
		{"solicitudid": "202401151430001", "nombresocio": "María López", "estado": "PENDIENTE", "monto": 1500},
		{"solicitudid": "202402011015002", "nombresocio": "Juan Pérez", "estado": "APROBADO"},
		{"solicitudid": "202312240900003", "nombresocio": "Ana Torres", "estado": "RECHAZADO"},
	}
}

// exerciseStore runs the Store contract against s, which must hold sampleRows.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	want := "202402011015002,202401151430001,202312240900003"
	if strings.Join(ids, ",") != want {
		t.Errorf("Expected newest first %s, got %v", want, ids)
	}

	rec, err := s.Get(ctx, "202401151430001")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.Name != "María López" || !rec.Amount.Valid {
		t.Errorf("Unexpected record %+v", rec)
	}

	if _, err := s.Get(ctx, "999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := s.Update(ctx, "202401151430001", map[string]any{"estado": "APROBADO", "monto": 2000}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	rec, _ = s.Get(ctx, "202401151430001")
	if rec.Status != "APROBADO" || rec.Amount.Decimal.IntPart() != 2000 {
		t.Errorf("Update not applied: %+v", rec)
	}
	if err := s.Update(ctx, "999", map[string]any{"estado": "X"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on update, got %v", err)
	}

	if err := s.Delete(ctx, "202312240900003"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := s.Delete(ctx, "202312240900003"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	list, _ = s.List(ctx)
	if len(list) != 2 {
		t.Errorf("Expected 2 records after delete, got %d", len(list))
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(sampleRows()...))
}

func TestMemoryStoreCopiesRows(t *testing.T) {
	row := map[string]any{"solicitudid": "1", "nombresocio": "Ana"}
	s := NewMemoryStore(row)
	row["nombresocio"] = "Changed"

	rec, err := s.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.Name != "Ana" {
		t.Errorf("Store shares the caller's map: %s", rec.Name)
	}
}

func TestMemoryStoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryStore().List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), "solicitudes:test:rows")
	if err != nil {
		t.Fatalf("NewRedisStore returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	for _, row := range sampleRows() {
		if err := s.Put(context.Background(), row); err != nil {
			t.Fatalf("Put returned error: %v", err)
		}
	}
	return s, mr
}

func TestRedisStore(t *testing.T) {
	s, _ := newTestRedisStore(t)
	exerciseStore(t, s)
}

// concurrentWriter rewrites a row through a second connection right after
// the first HGET, between WATCH and EXEC.
type concurrentWriter struct {
	other *redis.Client
	key   string
	id    string
	row   string
	hits  int
}

func (w *concurrentWriter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (w *concurrentWriter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if cmd.Name() == "hget" && w.hits == 0 {
			w.hits++
			if werr := w.other.HSet(ctx, w.key, w.id, w.row).Err(); werr != nil {
				return werr
			}
		}
		return err
	}
}

func (w *concurrentWriter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisStoreUpdateRetriesOnConflict(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer other.Close()
	s.client.AddHook(&concurrentWriter{
		other: other,
		key:   s.key,
		id:    "202401151430001",
		row:   `{"solicitudid":"202401151430001","nombresocio":"María L. Quispe","estado":"PENDIENTE"}`,
	})

	if err := s.Update(ctx, "202401151430001", map[string]any{"estado": "APROBADO"}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	rec, err := s.Get(ctx, "202401151430001")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.Name != "María L. Quispe" || rec.Status != "APROBADO" {
		t.Errorf("Expected the update merged over the concurrent write, got %+v", rec)
	}
}

func TestRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisStore(context.Background(), "redis://"+addr, ""); err == nil {
		t.Fatal("Expected an error for a stopped server")
	}
}

func TestNewRedisStoreInvalidURL(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "not a url", ""); err == nil {
		t.Fatal("Expected an error for an invalid URL")
	}
}

// fakePostgREST serves the subset of PostgREST used by SupabaseStore.
type fakePostgREST struct {
	mu      sync.Mutex
	rows    []map[string]any
	headers []http.Header
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headers = append(f.headers, r.Header.Clone())

	if r.URL.Path != "/rest/v1/"+DefaultTable {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"42P01","message":"relation does not exist"}`)
		return
	}
	if r.Header.Get("apikey") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"No API key found in request"}`)
		return
	}

	q := r.URL.Query()
	match := func(row map[string]any) bool {
		cond := q.Get("solicitudid")
		return cond == "" || "eq."+row["solicitudid"].(string) == cond
	}

	var out []map[string]any
	switch r.Method {
	case http.MethodGet:
		for _, row := range f.rows {
			if match(row) {
				out = append(out, row)
			}
		}
		if q.Get("order") == "solicitudid.desc" {
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
		}
	case http.MethodPatch:
		var fields map[string]any
		_ = json.NewDecoder(r.Body).Decode(&fields)
		for _, row := range f.rows {
			if match(row) {
				for k, v := range fields {
					row[k] = v
				}
				out = append(out, row)
			}
		}
	case http.MethodDelete:
		var kept []map[string]any
		for _, row := range f.rows {
			if match(row) {
				out = append(out, row)
			} else {
				kept = append(kept, row)
			}
		}
		f.rows = kept
	}
	if out == nil {
		out = []map[string]any{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func newFakeSupabase(t *testing.T) (*SupabaseStore, *fakePostgREST) {
	t.Helper()
	// stored oldest first so ordering has to come from the query
	fake := &fakePostgREST{rows: []map[string]any{
		{"solicitudid": "202312240900003", "nombresocio": "Ana Torres", "estado": "RECHAZADO"},
		{"solicitudid": "202401151430001", "nombresocio": "María López", "estado": "PENDIENTE", "monto": 1500},
		{"solicitudid": "202402011015002", "nombresocio": "Juan Pérez", "estado": "APROBADO"},
	}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return NewSupabaseStore(SupabaseConfig{URL: server.URL + "/", AnonKey: "anon"}), fake
}

func TestSupabaseStore(t *testing.T) {
	s, _ := newFakeSupabase(t)
	exerciseStore(t, s)
}

func TestSupabaseStoreAccessToken(t *testing.T) {
	s, fake := newFakeSupabase(t)

	if _, err := s.List(context.Background()); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	ctx := WithAccessToken(context.Background(), "user-token")
	if _, err := s.List(ctx); err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if got := fake.headers[0].Get("Authorization"); got != "Bearer anon" {
		t.Errorf("Expected the anon key without a session, got %q", got)
	}
	if got := fake.headers[1].Get("Authorization"); got != "Bearer user-token" {
		t.Errorf("Expected the user token, got %q", got)
	}
	if got := fake.headers[1].Get("apikey"); got != "anon" {
		t.Errorf("Expected apikey header, got %q", got)
	}
}

func TestSupabaseStoreAPIError(t *testing.T) {
	fake := &fakePostgREST{}
	server := httptest.NewServer(fake)
	defer server.Close()

	s := NewSupabaseStore(SupabaseConfig{URL: server.URL, AnonKey: "anon", Table: "missing"})
	_, err := s.List(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected an APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "42P01" {
		t.Errorf("Unexpected error %+v", apiErr)
	}
}

func TestAccessToken(t *testing.T) {
	if AccessToken(context.Background()) != "" {
		t.Error("Expected no token on a bare context")
	}
	if AccessToken(WithAccessToken(context.Background(), "t")) != "t" {
		t.Error("Expected the attached token")
	}
}
