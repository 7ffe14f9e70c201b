package migrate

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/storedesk/storedesk/internal/infrastructure/migration"
	"github.com/storedesk/storedesk/internal/interfaces/cli/common"
)

var (
	env   string
	steps int
	auto  bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage the schema of the shared store: apply, roll back and inspect migrations.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "Create tables from the models instead of the versioned scripts")
	return cmd
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func runUp(cmd *cobra.Command, args []string) error {
	e, err := common.Init(env)
	if err != nil {
		return err
	}
	defer e.Close()

	var strategy migration.Strategy
	if auto {
		strategy = migration.NewAutoMigrateStrategy(e.Log)
	} else {
		if strategy, err = migration.NewGooseStrategy(e.Config.Database.Driver, e.Log); err != nil {
			return err
		}
	}

	e.Log.Infow("running up migrations", "environment", env, "strategy", strategy.GetName())
	if err := strategy.Migrate(cmd.Context(), e.DB); err != nil {
		e.Log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	e.Log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	e, err := common.Init(env)
	if err != nil {
		return err
	}
	defer e.Close()

	strategy, err := migration.NewGooseStrategy(e.Config.Database.Driver, e.Log)
	if err != nil {
		return err
	}

	e.Log.Infow("running down migrations", "environment", env, "steps", steps)
	if err := strategy.MigrateDown(cmd.Context(), e.DB, steps); err != nil {
		e.Log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	e.Log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := common.Init(env)
	if err != nil {
		return err
	}
	defer e.Close()

	strategy, err := migration.NewGooseStrategy(e.Config.Database.Driver, e.Log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	version, err := strategy.GetVersion(ctx, e.DB)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	statuses, err := strategy.Status(ctx, e.DB)
	if err != nil {
		return fmt.Errorf("failed to get detailed status: %w", err)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Environment:     %s\n", env)
	fmt.Printf("  Current Version: %d\n\n", version)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tAPPLIED\tAPPLIED AT\tSCRIPT")
	for _, st := range statuses {
		appliedAt := "-"
		if st.Applied {
			appliedAt = st.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%d\t%t\t%s\t%s\n", st.Version, st.Applied, appliedAt, st.Path)
	}
	return tw.Flush()
}
