package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"clinicdesk/internal/access"
	"clinicdesk/internal/booking"
	"clinicdesk/internal/cache"
	"clinicdesk/internal/clinicapi"
	"clinicdesk/internal/config"
	"clinicdesk/internal/directory"
	"clinicdesk/internal/events"
	"clinicdesk/internal/session"
)

type appOptions struct {
	configPath string
	logLevel   string
}

// app is the wired process: one client, one directory, one session.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	rdb     *redis.Client
	client  *clinicapi.Client
	dir     *directory.Directory
	session *session.Manager
	bus     *events.EventBus
	access  *access.Service
	out     io.Writer
}

func newApp(cmd *cobra.Command, opts *appOptions) (*app, error) {
	config.LoadEnv()
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logger := newLogger(cfg.Log.Level, cfg.Log.Format)

	var manager *session.Manager
	client := clinicapi.New(cfg.API.BaseURL,
		clinicapi.WithTimeout(cfg.APITimeout()),
		clinicapi.WithTokenSource(clinicapi.TokenFunc(func() string { return manager.Token() })),
		clinicapi.WithRateLimit(cfg.API.RateLimitRPS, cfg.RateLimitBurst()),
		clinicapi.WithLogger(logger),
	)

	var (
		rdb    *redis.Client
		stores directory.Stores
	)
	if cfg.RedisEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		stores = directory.RedisStores(rdb, cfg.Cache.Redis.Prefix)
	}
	dir := directory.New(client, cache.Config{TTL: cfg.CacheTTL(), Now: time.Now, Logger: logger}, stores)

	manager = session.NewManager(client, dir.Users, session.NewFileStore(cfg.Session.Path), logger,
		session.WithClearers(dir))

	if _, err := manager.Rehydrate(); err != nil {
		logger.Warn().Err(err).Msg("ignoring unreadable session file")
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		rdb:     rdb,
		client:  client,
		dir:     dir,
		session: manager,
		bus:     events.NewEventBus(logger),
		access:  access.NewService(logger),
		out:     cmd.OutOrStdout(),
	}, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

// authorize returns the logged-in principal when it holds perm.
func (a *app) authorize(perm access.Permission) (access.Principal, error) {
	st, err := a.session.Require()
	if err != nil {
		return access.Principal{}, err
	}
	p := access.Principal{UserID: st.UserID, Role: st.Role}
	if st.User != nil {
		p.DoctorID = st.User.DoctorID
	}
	return p, a.access.Check(p, perm)
}

func (a *app) bookingDeps() booking.Deps {
	return booking.Deps{
		API:       a.client,
		Doctors:   a.dir.Users,
		Patients:  a.dir.Patients,
		Locations: a.dir.Locations,
		Bus:       a.bus,
		Logger:    a.logger,
	}
}

// withApp builds the app for one command run.
func withApp(opts *appOptions, run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd.Context(), a, args)
	}
}

func newLogger(level, format string) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if strings.EqualFold(format, "json") {
		out = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// userMessage is what the terminal shows for a failed command.
func userMessage(err error) string {
	var apiErr *clinicapi.APIError
	switch {
	case errors.As(err, &apiErr):
		return clinicapi.MessageOf(err)
	case errors.Is(err, session.ErrNotAuthenticated):
		return "not logged in; run clinicdesk login"
	default:
		return err.Error()
	}
}
