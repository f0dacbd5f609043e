package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/record"
)

// SupabaseConfig locates the REST API of the backend.
type SupabaseConfig struct {
	URL     string        `yaml:"url"`
	AnonKey string        `yaml:"anon_key"`
	Table   string        `yaml:"table"`
	Timeout time.Duration `yaml:"timeout"`
}

// APIError is a non-2xx answer from the REST API.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("supabase: HTTP %d", e.Status)
	}
	return fmt.Sprintf("supabase: HTTP %d: %s", e.Status, e.Message)
}

// SupabaseStore talks to the PostgREST endpoint of a Supabase project.
type SupabaseStore struct {
	baseURL string
	anonKey string
	table   string
	client  *http.Client
}

// NewSupabaseStore creates a store for cfg.
func NewSupabaseStore(cfg SupabaseConfig) *SupabaseStore {
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SupabaseStore{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		table:   table,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient replaces the client used for requests.
func (s *SupabaseStore) SetHTTPClient(c *http.Client) {
	s.client = c
}

func (s *SupabaseStore) List(ctx context.Context) ([]record.Record, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", record.ColumnID+".desc")

	var rows []map[string]any
	err := s.do(ctx, http.MethodGet, q, nil, &rows)
	observe(opList, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list solicitudes: %w", err)
	}

	out := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, record.FromMap(row))
	}
	return out, nil
}

func (s *SupabaseStore) Get(ctx context.Context, id string) (record.Record, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set(record.ColumnID, "eq."+id)

	var rows []map[string]any
	err := s.do(ctx, http.MethodGet, q, nil, &rows)
	if err == nil && len(rows) == 0 {
		err = fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	observe(opGet, err)
	if err != nil {
		return record.Record{}, err
	}
	return record.FromMap(rows[0]), nil
}

func (s *SupabaseStore) Update(ctx context.Context, id string, fields map[string]any) error {
	q := url.Values{}
	q.Set(record.ColumnID, "eq."+id)

	var rows []map[string]any
	err := s.do(ctx, http.MethodPatch, q, fields, &rows)
	if err == nil && len(rows) == 0 {
		err = fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	observe(opUpdate, err)
	return err
}

func (s *SupabaseStore) Delete(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set(record.ColumnID, "eq."+id)

	var rows []map[string]any
	err := s.do(ctx, http.MethodDelete, q, nil, &rows)
	if err == nil && len(rows) == 0 {
		err = fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	observe(opDelete, err)
	return err
}

func (s *SupabaseStore) do(ctx context.Context, method string, q url.Values, body any, out any) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, url.PathEscape(s.table), q.Encode())

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	token := AccessToken(ctx)
	if token == "" {
		token = s.anonKey
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		log.Warn().Str("method", method).Int("status", resp.StatusCode).Str("code", apiErr.Code).
			Msg("supabase request rejected")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
