package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"clinicdesk/internal/access"
	"clinicdesk/internal/booking"
	"clinicdesk/internal/calendar"
	"clinicdesk/internal/models"
	"clinicdesk/internal/slots"
)

var stdin = os.Stdin

type selectionFlags struct {
	date, doctor, location string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "date, YYYY-MM-DD or YYYYMMDD (default today)")
	cmd.Flags().StringVar(&f.doctor, "doctor", "", "doctor id (default first doctor)")
	cmd.Flags().StringVar(&f.location, "location", "", "location id (default first location)")
}

func (f *selectionFlags) selection() slots.Selection {
	return slots.Selection{Date: f.date, DoctorID: f.doctor, LocationID: f.location}
}

func (a *app) openCalendar(ctx context.Context, sel slots.Selection) (*calendar.Calendar, error) {
	c := calendar.New(calendar.Deps{
		API:       a.client,
		Doctors:   a.dir.Users,
		Locations: a.dir.Locations,
		Patients:  a.dir.Patients,
		Bus:       a.bus,
		Logger:    a.logger,
	})
	if err := c.Init(ctx, sel); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func dayCmd(opts *appOptions) *cobra.Command {
	var (
		sel    selectionFlags
		search string
	)
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the slots and appointments of one day",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.authorize(access.ViewAppointments); err != nil {
				return err
			}
			c, err := a.openCalendar(ctx, sel.selection())
			if err != nil {
				return err
			}
			defer c.Close()
			c.SetSearch(search)
			renderDay(a, c)
			return nil
		}),
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&search, "search", "", "only list appointments matching this text")
	return cmd
}

func renderDay(a *app, c *calendar.Calendar) {
	v := c.View()
	s := v.Selection
	fmt.Fprintf(a.out, "%s  doctor %s  location %s  booked %d\n", s.Date, s.DoctorID, s.LocationID, c.BookedCount())

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATE\tBOOKING\tPATIENT\tSTATUS")
	for _, row := range v.Rows {
		state := string(row.State)
		if row.Unlisted() {
			state += " (unlisted)"
		}
		if row.DoubleBooked() {
			state += " (double)"
		}
		appts := append(append([]models.Appointment(nil), row.Confirmed...), row.Others...)
		if len(appts) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t\t\t\n", row.Time, state)
			continue
		}
		for i, ap := range appts {
			t := row.Time
			if i > 0 {
				t, state = "", ""
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t, state, ap.Key(), patientLabel(c.PatientName, ap.PatientID), ap.NormalizedStatus())
		}
	}
	_ = tw.Flush()

	if list := c.Appointments(); len(list) != 0 && len(list) != c.BookedCount() {
		fmt.Fprintf(a.out, "\n%d matching:\n", len(list))
		for _, ap := range list {
			fmt.Fprintf(a.out, "  %s  %s  %s\n", ap.Time, ap.Key(), patientLabel(c.PatientName, ap.PatientID))
		}
	}
}

func patientLabel(name func(string) string, id string) string {
	if n := name(id); n != "" {
		return n
	}
	return id
}

func bookCmd(opts *appOptions) *cobra.Command {
	var (
		sel     selectionFlags
		slot    string
		patient string
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.authorize(access.Book); err != nil {
				return err
			}
			date := sel.date
			if date == "" {
				date = time.Now().Format(models.ISODateLayout)
			}
			wf := booking.NewCreate(a.bookingDeps(), slots.CreateParams{
				DoctorID: sel.doctor, LocationID: sel.location, Date: date, Time: slot,
			})
			if err := wf.LoadLists(ctx); err != nil {
				return err
			}
			if err := wf.Update(func(d *booking.Draft) { d.PatientID = patient }); err != nil {
				return err
			}
			created, err := wf.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "booked %s on %s at %s\n", created.Key(), created.ISODate(), created.Time)
			return nil
		}),
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&slot, "time", "", "slot time, HH:mm or h:mm AM/PM")
	cmd.Flags().StringVar(&patient, "patient", "", "patient record id")
	_ = cmd.MarkFlagRequired("time")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

// findAppointment locates a booking on its current date.
func (a *app) findAppointment(ctx context.Context, date, key string) (models.Appointment, error) {
	appts, err := a.client.FetchAppointmentsByDate(ctx, date)
	if err != nil {
		return models.Appointment{}, err
	}
	for _, ap := range appts {
		if ap.Key() == key || ap.ID == key {
			return ap, nil
		}
	}
	return models.Appointment{}, fmt.Errorf("no appointment %s on %s", key, date)
}

func rescheduleCmd(opts *appOptions) *cobra.Command {
	var from, to, slot string
	cmd := &cobra.Command{
		Use:   "reschedule <bookingId>",
		Short: "Move an appointment to another date or time",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.authorize(access.Reschedule); err != nil {
				return err
			}
			appt, err := a.findAppointment(ctx, models.NormalizeDate(from), args[0])
			if err != nil {
				return err
			}
			wf := booking.NewReschedule(a.bookingDeps(), appt)
			if to == "" {
				err = wf.Load(ctx)
			} else {
				err = wf.SetDate(ctx, to)
			}
			if err != nil {
				return err
			}
			if err := wf.Select(slot); err != nil {
				return fmt.Errorf("%w; offered: %s", err, strings.Join(wf.Slots(), " "))
			}
			moved, err := wf.Save(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "moved %s to %s at %s\n", moved.Key(), moved.ISODate(), moved.Time)
			return nil
		}),
	}
	cmd.Flags().StringVar(&from, "on", "", "the appointment's current date")
	cmd.Flags().StringVar(&to, "to", "", "new date (default: same day)")
	cmd.Flags().StringVar(&slot, "time", "", "new time")
	_ = cmd.MarkFlagRequired("on")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func cancelCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <bookingId>",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.authorize(access.Cancel); err != nil {
				return err
			}
			if err := booking.NewActions(a.bookingDeps()).Cancel(ctx, models.Appointment{BookingID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "cancelled %s\n", args[0])
			return nil
		}),
	}
}

func completeCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark an appointment completed",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.authorize(access.Complete); err != nil {
				return err
			}
			if err := booking.NewActions(a.bookingDeps()).Complete(ctx, models.Appointment{ID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "completed %s\n", args[0])
			return nil
		}),
	}
}
