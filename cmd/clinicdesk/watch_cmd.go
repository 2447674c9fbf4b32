package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"clinicdesk/internal/access"
	"clinicdesk/internal/config"
	"clinicdesk/internal/dashboard"
	"clinicdesk/internal/metrics"
	"clinicdesk/internal/poller"
)

func watchCmd(opts *appOptions) *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the calendar and dashboard fresh, redrawing on every refresh",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.authorize(access.ViewAppointments); err != nil {
				return err
			}
			c, err := a.openCalendar(ctx, sel.selection())
			if err != nil {
				return err
			}
			defer c.Close()

			d := dashboard.New(a.client, a.dir.Patients, a.logger, time.Now)
			if err := d.Load(ctx, c.Selection().Date); err != nil {
				return err
			}

			var drawMu sync.Mutex
			redraw := func() {
				drawMu.Lock()
				defer drawMu.Unlock()
				fmt.Fprintln(a.out)
				renderDay(a, c)
				fmt.Fprintln(a.out)
				renderDashboard(a, d)
			}

			p := poller.New(a.cfg.PollInterval(), a.logger,
				poller.Task{Name: "calendar", Run: c.Refresh},
				poller.Task{Name: "dashboard", Run: d.Refresh},
				poller.Task{Name: "render", Run: func(context.Context) error { redraw(); return nil }},
			)

			path := config.ResolvePath(opts.configPath)
			if err := config.Watch(ctx, path, 5*time.Second, a.logger, func(cfg *config.Config) {
				p.SetInterval(cfg.PollInterval())
			}); err != nil {
				a.logger.Warn().Err(err).Str("path", path).Msg("config reload disabled")
			}

			a.startMonitoring(ctx)

			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case e, ok := <-c.Changes():
						if !ok {
							return
						}
						a.logger.Debug().Str("action", e.Action).Str("appointment_id", e.AppointmentID).Msg("appointments changed")
						p.RunOnce(ctx)
					}
				}
			}()

			redraw()
			p.Start(ctx)
			return nil
		}),
	}
	sel.register(cmd)
	return cmd
}

func (a *app) startMonitoring(ctx context.Context) {
	mon := a.cfg.Monitoring
	checks := []readiness{{name: "backend", ping: a.client.Ping}}
	if a.rdb != nil {
		checks = append(checks, readiness{name: "redis", ping: func(ctx context.Context) error {
			return a.rdb.Ping(ctx).Err()
		}})
	}

	if mon.PrometheusEnabled {
		metrics.Register()
	}
	switch {
	case mon.PrometheusEnabled && mon.PrometheusPort != 0 && mon.PrometheusPort != mon.HealthPort:
		go serve(ctx, mon.PrometheusPort, healthRouter(nil, true), a.logger)
		if mon.HealthPort != 0 {
			go serve(ctx, mon.HealthPort, healthRouter(checks, false), a.logger)
		}
	case mon.HealthPort != 0:
		go serve(ctx, mon.HealthPort, healthRouter(checks, mon.PrometheusEnabled), a.logger)
	}
}
