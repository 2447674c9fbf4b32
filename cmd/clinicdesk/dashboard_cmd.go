package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"clinicdesk/internal/access"
	"clinicdesk/internal/dashboard"
	"clinicdesk/internal/models"
)

func dashboardCmd(opts *appOptions) *cobra.Command {
	var date, status, search string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the day's appointment list with status counts",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.authorize(access.ViewAppointments); err != nil {
				return err
			}
			d := dashboard.New(a.client, a.dir.Patients, a.logger, time.Now)
			if err := d.Load(ctx, date); err != nil {
				return err
			}
			if status != "" {
				d.SetFilter(models.NormalizeStatus(status))
			}
			d.SetSearch(search)
			renderDashboard(a, d)
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "date (default today)")
	cmd.Flags().StringVar(&status, "status", "", "only this status")
	cmd.Flags().StringVar(&search, "search", "", "filter by patient, phone or booking id")
	return cmd
}

func renderDashboard(a *app, d *dashboard.Dashboard) {
	k := d.KPIs()
	fmt.Fprintf(a.out, "%s  total %d", d.Date(), k.Total)
	for _, s := range models.Statuses {
		if n := k.ByStatus[s]; n > 0 {
			fmt.Fprintf(a.out, "  %s %d", s, n)
		}
	}
	fmt.Fprintf(a.out, "  (loaded %s)\n", d.LoadedAt().Format("15:04:05"))

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tBOOKING\tPATIENT\tDOCTOR\tSTATUS")
	for _, ap := range d.Appointments() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ap.Time, ap.Key(), patientLabel(d.PatientName, ap.PatientID), ap.DoctorID, ap.NormalizedStatus())
	}
	_ = tw.Flush()
}
