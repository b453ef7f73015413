package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/carbon-tracker/internal/config"
	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/emissions"
	"github.com/iliyamo/carbon-tracker/internal/model"
	"github.com/iliyamo/carbon-tracker/internal/report"
	"github.com/iliyamo/carbon-tracker/internal/repository"
	"github.com/iliyamo/carbon-tracker/internal/service"
)

// opener returns a database handle and a release function.
type opener func() (*database.DB, func(), error)

// defaultOpener connects with the server's environment configuration.
// JWT_SECRET is not needed here, so a placeholder satisfies validation.
func defaultOpener() (*database.DB, func(), error) {
	if os.Getenv("JWT_SECRET") == "" {
		_ = os.Setenv("JWT_SECRET", "carbonctl")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "carbonctl",
		Short:         "Administer the carbon footprint tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		migrateCmd(open),
		promoteCmd(open),
		historyCmd(open),
		calcCmd(),
		factorsCmd(),
		versionCmd(),
	)
	return root
}

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, release, err := open()
			if err != nil {
				return err
			}
			defer release()

			applied, err := database.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied migrations: %v\n", applied)
			return nil
		},
	}
}

func promoteCmd(open opener) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "promote <username>",
		Short: "Change the role of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, release, err := open()
			if err != nil {
				return err
			}
			defer release()

			accounts := service.NewAccounts(repository.NewUserRepo(db), 0)
			if err := accounts.Promote(cmd.Context(), args[0], model.Role(role)); err != nil {
				if errors.Is(err, service.ErrAccountNotFound) {
					return fmt.Errorf("no account named %q", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], role)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(model.RoleAdmin), "role to assign (user|admin)")
	return cmd
}

func historyCmd(open opener) *cobra.Command {
	var chartPath string
	cmd := &cobra.Command{
		Use:   "history <username>",
		Short: "Print an account's entries and cumulative total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, release, err := open()
			if err != nil {
				return err
			}
			defer release()

			ctx := cmd.Context()
			users := repository.NewUserRepo(db)
			a, err := service.NewAccounts(users, 0).Lookup(ctx, args[0])
			if err != nil {
				if errors.Is(err, service.ErrAccountNotFound) {
					return fmt.Errorf("no account named %q", args[0])
				}
				return err
			}
			ledger := service.NewLedger(users, repository.NewEntryRepo(db), nil, nil)
			entries, err := ledger.ListEntries(ctx, a.ID)
			if err != nil {
				return err
			}
			report.HistoryTable(cmd.OutOrStdout(), a.Username, entries)

			if chartPath != "" {
				return writeChart(ctx, ledger, a, chartPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chartPath, "chart", "", "also write an HTML chart of daily totals to this file")
	return cmd
}

func writeChart(ctx context.Context, ledger *service.Ledger, a *model.Account, path string) error {
	days, err := ledger.DailyTotals(ctx, a.ID)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.RenderDailyChart(f, a.Username, days); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func calcCmd() *cobra.Command {
	var a emissions.Activity
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute emissions for one day of activity without storing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.Validate(); err != nil {
				return err
			}
			report.BreakdownTable(cmd.OutOrStdout(), a, emissions.Calculate(a))
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&a.CarKm, "car", 0, "km driven by car")
	f.Float64Var(&a.BikeKm, "bike", 0, "km by bike")
	f.Float64Var(&a.BusKm, "bus", 0, "km by bus")
	f.Float64Var(&a.ElectricityKWh, "kwh", 0, "electricity used, kWh")
	f.Float64Var(&a.MeatMeals, "meat", 0, "meat meals")
	f.Float64Var(&a.VegMeals, "veg", 0, "vegetarian meals")
	return cmd
}

func factorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "factors",
		Short: "Print the emission factor table",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			report.FactorTable(cmd.OutOrStdout(), emissions.Factors())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "carbonctl %s (commit: %s)\n", version, commit)
		},
	}
}
