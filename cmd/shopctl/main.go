package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/marketvest/internal/app"
	"github.com/MrJamesThe3rd/marketvest/internal/config"
	"github.com/MrJamesThe3rd/marketvest/internal/database"
)

// env is filled by the root command before any subcommand runs.
type env struct {
	cfg *config.Config
	db  *sql.DB
}

func (e *env) services() *app.Services {
	return app.New(e.cfg, e.db)
}

func main() {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "shopctl",
		Short:         "Operator commands for the marketvest backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			e.cfg = cfg

			if cmd.Annotations["db"] == "none" {
				return nil
			}

			db, err := database.New(cmd.Context(), cfg.ConnectionString(), cfg.Pool())
			if err != nil {
				return err
			}

			e.db = db

			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.db != nil {
				e.db.Close()
			}
		},
	}

	rootCmd.AddCommand(migrateCmd(e))
	rootCmd.AddCommand(sweepCmd(e))
	rootCmd.AddCommand(ledgerCmd(e))
	rootCmd.AddCommand(tokenCmd(e))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
