package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clinicdesk/internal/access"
	"clinicdesk/internal/admin"
	"clinicdesk/internal/availability"
	"clinicdesk/internal/models"
)

func patientsCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "patients", Short: "Browse and manage patients"}

	var refresh bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.authorize(access.ViewAppointments); err != nil {
				return err
			}
			patients, err := a.dir.Patients.List(ctx, refresh)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPATIENT NO\tNAME\tPHONE")
			for _, p := range patients {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.PatientID, p.Name, p.Phone)
			}
			return tw.Flush()
		}),
	}
	list.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one patient",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.authorize(access.ViewAppointments); err != nil {
				return err
			}
			p, err := a.dir.Patients.Get(ctx, args[0], false)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s)\nphone: %s\nemail: %s\ngender: %s\n", p.Name, p.AppointmentPatientID(), p.Phone, p.Email, p.Gender)
			if p.Age != nil {
				fmt.Fprintf(a.out, "age: %d\n", *p.Age)
			}
			if p.Notes != "" {
				fmt.Fprintf(a.out, "notes: %s\n", p.Notes)
			}
			return nil
		}),
	}

	var name, phone, email string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a patient",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.authorize(access.ManagePatients); err != nil {
				return err
			}
			p, err := a.dir.Patients.Create(ctx, models.Patient{Name: name, Phone: phone, Email: email})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added %s (%s)\n", p.Name, p.ID)
			return nil
		}),
	}
	add.Flags().StringVar(&name, "name", "", "full name")
	add.Flags().StringVar(&phone, "phone", "", "phone number")
	add.Flags().StringVar(&email, "email", "", "email")
	_ = add.MarkFlagRequired("name")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.authorize(access.ManagePatients); err != nil {
				return err
			}
			roster := admin.NewRoster[models.Patient]("patients", a.dir.Patients, a.logger)
			if err := roster.Load(ctx, false); err != nil {
				return err
			}
			if err := roster.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s, %d remaining\n", args[0], len(roster.Items()))
			return nil
		}),
	}

	cmd.AddCommand(list, show, add, remove)
	return cmd
}

func locationsCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "locations", Short: "Browse and manage clinic locations"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.authorize(access.ViewAppointments); err != nil {
				return err
			}
			locs, err := a.dir.Locations.List(ctx, false)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODE\tNAME\tADDRESS")
			for _, l := range locs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, l.Code, l.Name, l.Address)
			}
			return tw.Flush()
		}),
	}

	var name, address string
	rename := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a location's name or address",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.authorize(access.ManageLocations); err != nil {
				return err
			}
			roster := admin.NewRoster[models.Location]("locations", a.dir.Locations, a.logger)
			if err := roster.Load(ctx, false); err != nil {
				return err
			}
			var current *models.Location
			for _, l := range roster.Items() {
				if l.ID == args[0] {
					l := l
					current = &l
				}
			}
			if current == nil {
				return admin.ErrNotFound
			}
			edit := *current
			if name != "" {
				edit.Name = name
			}
			if address != "" {
				edit.Address = address
			}
			saved, err := roster.Update(ctx, edit.ID, edit)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "updated %s: %s\n", saved.ID, saved.Name)
			return nil
		}),
	}
	rename.Flags().StringVar(&name, "name", "", "new name")
	rename.Flags().StringVar(&address, "address", "", "new address")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.authorize(access.ManageLocations); err != nil {
				return err
			}
			roster := admin.NewRoster[models.Location]("locations", a.dir.Locations, a.logger)
			if err := roster.Load(ctx, false); err != nil {
				return err
			}
			if err := roster.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, rename, remove)
	return cmd
}

func usersCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage staff accounts"}

	var role string
	list := &cobra.Command{
		Use:   "list",
		Short: "List users of a role",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.authorize(access.ViewAppointments); err != nil {
				return err
			}
			users, err := a.dir.Users.ByRole(ctx, strings.ToUpper(role), false)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tLOCATIONS")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, strings.Join(u.LocationNames, ", "))
			}
			return tw.Flush()
		}),
	}
	list.Flags().StringVar(&role, "role", models.RoleDoctor, "ADMIN, DOCTOR or RECEPTIONIST")

	var (
		name, email, password, newRole string
		locations                      []string
	)
	register := &cobra.Command{
		Use:   "register",
		Short: "Create a staff account",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.authorize(access.ManageUsers); err != nil {
				return err
			}
			err := a.dir.Users.Register(ctx, models.NewUser{
				Name: name, Email: email, Password: password,
				Role: strings.ToUpper(newRole), LocationIDs: locations,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "registered %s\n", email)
			return nil
		}),
	}
	register.Flags().StringVar(&name, "name", "", "full name")
	register.Flags().StringVar(&email, "email", "", "login email")
	register.Flags().StringVar(&password, "password", "", "initial password")
	register.Flags().StringVar(&newRole, "role", models.RoleReceptionist, "role")
	register.Flags().StringSliceVar(&locations, "location", nil, "location id, repeatable")
	for _, f := range []string{"name", "email", "password"} {
		_ = register.MarkFlagRequired(f)
	}

	var delRole string
	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a staff account",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if _, err := a.authorize(access.ManageUsers); err != nil {
				return err
			}
			backend := admin.RoleBackend{Users: a.dir.Users, Role: strings.ToUpper(delRole)}
			roster := admin.NewRoster[models.UserSummary]("users", backend, a.logger)
			if err := roster.Load(ctx, false); err != nil {
				return err
			}
			if err := roster.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		}),
	}
	remove.Flags().StringVar(&delRole, "role", models.RoleDoctor, "role the user is listed under")

	cmd.AddCommand(list, register, remove)
	return cmd
}

func scheduleCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "schedule", Short: "Show or edit a doctor's availability"}

	show := &cobra.Command{
		Use:   "show [doctorId]",
		Short: "Show a schedule (default: your own)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			p, err := a.authorize(access.ViewAppointments)
			if err != nil {
				return err
			}
			ed, err := availability.NewService(a.client, a.logger).Load(ctx, scheduleDoctor(p, args))
			if err != nil {
				return err
			}
			printSchedule(a, ed)
			return nil
		}),
	}

	var (
		days            []string
		start, end, loc string
		block, unblock  []string
	)
	set := &cobra.Command{
		Use:   "set [doctorId]",
		Short: "Edit working days, hours and blocked dates",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			principal, err := a.authorize(access.ViewAppointments)
			if err != nil {
				return err
			}
			doctorID := scheduleDoctor(principal, args)
			if err := a.access.CheckSchedule(principal, doctorID); err != nil {
				return err
			}
			svc := availability.NewService(a.client, a.logger)
			ed, err := svc.Load(ctx, doctorID)
			if err != nil {
				return err
			}
			if len(days) > 0 {
				keys := make([]models.DayKey, 0, len(days))
				for _, d := range days {
					k, err := models.ParseDayKey(d)
					if err != nil {
						return err
					}
					keys = append(keys, k)
				}
				ed.SetAvailableDays(keys)
			}
			if start != "" || end != "" {
				if err := ed.SetRange(start, end); err != nil {
					return err
				}
			}
			if loc != "" {
				ed.SetLocation(loc)
			}
			for _, d := range block {
				if err := ed.AddUnavailableDate(d); err != nil {
					return fmt.Errorf("%s: %w", d, err)
				}
			}
			for _, d := range unblock {
				ed.RemoveUnavailableDate(d)
			}
			if _, err := svc.Save(ctx, ed); err != nil {
				return err
			}
			printSchedule(a, ed)
			return nil
		}),
	}
	set.Flags().StringSliceVar(&days, "days", nil, "working days, e.g. M,T,W,Th,F")
	set.Flags().StringVar(&start, "start", "", "daily start time")
	set.Flags().StringVar(&end, "end", "", "daily end time")
	set.Flags().StringVar(&loc, "location", "", "location id")
	set.Flags().StringSliceVar(&block, "block", nil, "date to mark unavailable, repeatable")
	set.Flags().StringSliceVar(&unblock, "unblock", nil, "date to make available again, repeatable")

	cmd.AddCommand(show, set)
	return cmd
}

func scheduleDoctor(p access.Principal, args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	if p.DoctorID != "" {
		return p.DoctorID
	}
	return p.UserID
}

func printSchedule(a *app, ed *availability.Editor) {
	s, err := ed.Schedule()
	if err != nil {
		a.logger.Debug().Err(err).Msg("schedule incomplete")
	}
	days := make([]string, 0, 7)
	for _, d := range ed.AvailableDays() {
		days = append(days, string(d))
	}
	fmt.Fprintf(a.out, "doctor: %s\nlocation: %s\ndays: %s\nhours: %s-%s\nblocked: %s\n",
		s.DoctorID, s.LocationID, strings.Join(days, " "), s.StartTime, s.EndTime,
		strings.Join(ed.UnavailableDates(), " "))
}

func passwordCmd(opts *appOptions) *cobra.Command {
	var username, current, next string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change a password",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			st, err := a.session.Require()
			if err != nil {
				return err
			}
			isAdmin := access.Allowed(st.Role, access.ManageUsers)
			if username == "" && st.User != nil {
				username = st.User.Email
			}
			if current == "" && !isAdmin {
				return fmt.Errorf("--current is required")
			}
			err = a.dir.Users.UpdatePassword(ctx, models.PasswordChange{
				Username: username, Password: current, NewPassword: next, IsAdmin: isAdmin,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "password changed")
			return nil
		}),
	}
	cmd.Flags().StringVar(&username, "username", "", "account (default: yours)")
	cmd.Flags().StringVar(&current, "current", "", "current password")
	cmd.Flags().StringVar(&next, "new", "", "new password")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
