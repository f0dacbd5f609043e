// Package store reads and writes credit applications.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/inkacorp/solicitudes/internal/metrics"
	"github.com/inkacorp/solicitudes/internal/record"
)

// ErrNotFound is returned when no record has the requested identifier.
var ErrNotFound = errors.New("solicitud not found")

// DefaultTable is the table credit applications live in.
const DefaultTable = "ic_solicitud_de_credito"

// Store is the record backend.
type Store interface {
	// List returns every record, newest identifier first.
	List(ctx context.Context) ([]record.Record, error)
	Get(ctx context.Context, id string) (record.Record, error)
	// Update applies fields to the record; unknown ids yield ErrNotFound.
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type tokenKey struct{}

// WithAccessToken attaches the signed-in user's token to ctx; backends that
// enforce row level security act on the user's behalf.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// AccessToken returns the token attached with WithAccessToken.
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Operation names used in metrics.
const (
	opList   = "list"
	opGet    = "get"
	opUpdate = "update"
	opDelete = "delete"
)

func observe(op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.ObserveStore(op, "not_found")
	default:
		metrics.ObserveStore(op, metrics.Result(err))
	}
}

func sortNewestFirst(records []record.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].ID, records[j].ID
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a > b
	})
}
