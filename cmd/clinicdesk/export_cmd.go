package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clinicdesk/internal/access"
	"clinicdesk/internal/export"
	"clinicdesk/internal/models"
)

func exportCmd(opts *appOptions) *cobra.Command {
	var (
		sel selectionFlags
		dir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a day's appointments and slot occupancy to an Excel workbook",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			principal, err := a.authorize(access.Export)
			if err != nil {
				return err
			}
			c, err := a.openCalendar(ctx, sel.selection())
			if err != nil {
				return err
			}
			defer c.Close()

			doctors, err := a.dir.Users.Names(ctx, models.RoleDoctor)
			if err != nil {
				return err
			}
			locations, err := a.dir.Locations.Names(ctx)
			if err != nil {
				return err
			}
			by := principal.UserID
			if st := a.session.State(); st != nil && st.User != nil && st.User.Name != "" {
				by = st.User.Name
			}
			if dir == "" {
				dir = a.cfg.Export.Dir
			}

			path, err := export.NewExporter(a.logger).ToFile(dir, export.Day{
				View:         c.View(),
				Appointments: c.Appointments(),
				DoctorNames:  doctors,
				Locations:    locations,
				PatientName:  c.PatientName,
				ExportedAt:   time.Now(),
				ExportedBy:   by,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, path)
			return nil
		}),
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default export.dir)")
	return cmd
}
