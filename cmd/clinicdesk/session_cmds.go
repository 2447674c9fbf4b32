package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func loginCmd(opts *appOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if password == "" {
				fmt.Fprint(a.out, "password: ")
				line, err := bufio.NewReader(stdin).ReadString('\n')
				if err != nil && line == "" {
					return err
				}
				password = strings.TrimSpace(line)
			}
			st, err := a.session.Login(ctx, username, password)
			if err != nil {
				return err
			}
			name := st.UserID
			if st.User != nil && st.User.Name != "" {
				name = st.User.Name
			}
			fmt.Fprintf(a.out, "logged in as %s (%s)\n", name, st.Role)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func logoutCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the session and every cached list",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			if err := a.session.Logout(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("logout cleanup incomplete")
			}
			fmt.Fprintln(a.out, "logged out")
			return nil
		}),
	}
}

func whoamiCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: withApp(opts, func(ctx context.Context, a *app, _ []string) error {
			st, err := a.session.Require()
			if err != nil {
				return err
			}
			user, err := a.dir.Users.Current(ctx, st.UserID, false)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s>\nrole: %s\nid: %s\n", user.Name, user.Email, user.Role, user.ID)
			if st.ExpiresAt != nil {
				fmt.Fprintf(a.out, "session expires: %s\n", st.ExpiresAt.Format("2006-01-02 15:04"))
			}
			return nil
		}),
	}
}
