package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mdlog/internal/loader"
	"mdlog/pkg/conn"
)

var loadCmd = &cobra.Command{
	Use:   "load <kind>",
	Short: "Insert orders or transactions into PostgreSQL",
	Args:  kindArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !state.cfg.Postgres.Configured() {
			return fmt.Errorf("load: postgres is not configured (postgres.* or MDLOG_POSTGRES_*)")
		}
		f, err := filterFlags(cmd)
		if err != nil {
			return err
		}
		batch, _ := cmd.Flags().GetInt("batch")

		client, err := conn.New(state.cfg.Postgres)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.Ping(cmd.Context()); err != nil {
			return err
		}

		ld, err := loader.New(client.DB(), loader.Config{BatchSize: batch})
		if err != nil {
			return err
		}
		if err := ld.Migrate(cmd.Context()); err != nil {
			return err
		}

		st, err := openKind(cmd, args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := ld.Load(cmd.Context(), st, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows inserted\n", st.Layout(), n)
		return nil
	},
}

func init() {
	loadCmd.Flags().Int("batch", 1000, "rows per insert")
	addFilterFlags(loadCmd)
	addFileFlag(loadCmd)
	rootCmd.AddCommand(loadCmd)
}
