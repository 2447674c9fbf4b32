package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", userMessage(err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts appOptions
	root := &cobra.Command{
		Use:           "clinicdesk",
		Short:         "Clinic front-desk client: appointments, patients, schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $CLINICDESK_CONFIG or configs/clinicdesk.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	root.AddCommand(
		loginCmd(&opts),
		logoutCmd(&opts),
		whoamiCmd(&opts),
		dayCmd(&opts),
		dashboardCmd(&opts),
		bookCmd(&opts),
		rescheduleCmd(&opts),
		cancelCmd(&opts),
		completeCmd(&opts),
		patientsCmd(&opts),
		locationsCmd(&opts),
		usersCmd(&opts),
		scheduleCmd(&opts),
		passwordCmd(&opts),
		exportCmd(&opts),
		watchCmd(&opts),
	)
	return root
}
