package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/config"
	"github.com/inkacorp/solicitudes/internal/session"
	"github.com/inkacorp/solicitudes/internal/storage"
	"github.com/inkacorp/solicitudes/internal/store"
	"github.com/inkacorp/solicitudes/pkg/api"
)

//go:embed demo.json
var demoJSON []byte

// Demo sign in, only accepted when the offline authenticator is in use.
const (
	demoEmail    = "demo@inkacorp.net"
	demoPassword = "demo"
)

type app struct {
	cfg     *config.Config
	store   store.Store
	gate    *session.Gate
	gen     *api.Generator
	archive storage.Sink
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, demo bool) (*app, error) {
	a := &app{cfg: cfg}

	var rows []map[string]any
	if demo {
		var err error
		if rows, err = demoRows(); err != nil {
			return nil, err
		}
	}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		a.store = store.NewMemoryStore(rows...)
	case config.DriverRedis:
		rs, err := store.NewRedisStore(ctx, cfg.Store.RedisURL, cfg.Store.RedisKey)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rs.Close)
		for _, row := range rows {
			if err := rs.Put(ctx, row); err != nil {
				a.Close()
				return nil, fmt.Errorf("failed to seed redis: %w", err)
			}
		}
		a.store = rs
	default:
		a.store = store.NewSupabaseStore(cfg.Supabase.SupabaseConfig)
	}
	log.Info().Str("driver", cfg.Store.Driver).Int("seeded", len(rows)).Msg("record store ready")

	a.gate = a.newGate()

	switch cfg.Archive.Driver {
	case config.ArchiveFile:
		a.archive = storage.NewFileSink(cfg.Archive.Dir)
	case config.ArchiveMinio:
		ms, err := storage.NewMinioSink(cfg.Archive.Minio)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := ms.EnsureBucket(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.archive = ms
	}

	a.gen = api.NewWithOptions(reportOptions(cfg.Report))

	for _, status := range cfg.Status.Inconsistencies() {
		log.Warn().Str("status", status).Msg("edit option has no list group; records in this status are listed after the configured groups")
	}
	return a, nil
}

// newGate uses the Supabase auth API when a project is configured and the
// offline authenticator otherwise.
func (a *app) newGate() *session.Gate {
	sb := a.cfg.Supabase
	if sb.URL != "" {
		auth := session.NewGoTrue(session.GoTrueConfig{URL: sb.URL, AnonKey: sb.AnonKey, Timeout: sb.Timeout})
		return session.NewGate(auth, sb.JWTSecret)
	}

	secret := sb.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
	}
	log.Warn().Str("email", demoEmail).Msg("no Supabase project configured, using offline sign in")
	return session.NewGate(session.NewStaticAuth(secret, map[string]string{demoEmail: demoPassword}), secret)
}

func reportOptions(rc config.ReportConfig) api.Options {
	opts := api.DefaultOptions()
	if rc.Company != "" {
		opts.Company = rc.Company
		opts.Author = rc.Company
	}
	if rc.SystemName != "" {
		opts.SystemName = rc.SystemName
	}
	if rc.TermsURL != "" {
		opts.TermsURL = rc.TermsURL
	}
	if rc.ImageTimeout > 0 {
		opts.ImageTimeout = rc.ImageTimeout
	}
	if rc.MarginTop > 0 {
		opts.MarginTop = rc.MarginTop
	}
	if rc.FooterReserve > 0 {
		opts.FooterReserve = rc.FooterReserve
	}
	opts.LogoURL = rc.LogoURL
	opts.Colors = rc.Colors
	opts.ResourcePaths = append(opts.ResourcePaths, rc.ResourcePaths...)
	opts.Verify = rc.Verify
	opts.Debug = rc.Debug
	return opts
}

// Close releases store connections.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

func demoRows() ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(demoJSON))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode demo data: %w", err)
	}
	return rows, nil
}
