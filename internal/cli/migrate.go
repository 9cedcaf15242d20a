package cli

import (
	"github.com/spf13/cobra"

	"github.com/maxviazov/pr-insights-service/internal/migrations"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(op func(*migrations.Migrator, *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := migrations.New(a.db.Pool(), &a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()
			return op(m, cmd)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  run(func(m *migrations.Migrator, c *cobra.Command) error { return m.Up(c.Context()) }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE:  run(func(m *migrations.Migrator, c *cobra.Command) error { return m.Down(c.Context()) }),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print applied and pending migrations",
			RunE:  run(func(m *migrations.Migrator, c *cobra.Command) error { return m.Status(c.Context()) }),
		},
	)
	return cmd
}
