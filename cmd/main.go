package main

import (
	"context"
	"os"

	"medical-scheduling/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "scheduler",
		Short:        "Appointment scheduling API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(remindersCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}

			app, err := bootstrap.New(context.Background(), cfg, log)
			if err != nil {
				return err
			}
			return app.Run()
		},
	}
}

func remindersCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Run the appointment reminder job",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}

			app, err := bootstrap.New(context.Background(), cfg, log)
			if err != nil {
				return err
			}
			return app.RunReminders(once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")

	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			return bootstrap.Migrate(cfg, log)
		},
	}
}
