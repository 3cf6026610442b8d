package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
	"github.com/corpcare/agentbooking/migrations"
	"github.com/corpcare/agentbooking/pkg/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "agentctl",
		Short:        "Operational tasks for the agent booking service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(createAdminCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// connect loads configuration and opens the database
func connect() (*config.Config, *postgres.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	observability.InitLogger("agentctl", cfg.Server.Env, cfg.Server.LogLevel)

	client, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			all, err := migrations.All()
			if err != nil {
				return err
			}
			applied, err := client.Migrate(cmd.Context(), all)
			if err != nil {
				return err
			}
			log.Info().Int("applied", len(applied)).Msg("Migrations complete")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			return printMigrationStatus(cmd.Context(), cmd, client)
		},
	})

	return cmd
}

func printMigrationStatus(ctx context.Context, cmd *cobra.Command, client *postgres.Client) error {
	all, err := migrations.All()
	if err != nil {
		return err
	}
	applied, err := client.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	for _, m := range all {
		state := "pending"
		if done[m.Version] {
			state = "applied"
		}
		cmd.Printf("%-40s %s\n", m.Version, state)
	}
	return nil
}
