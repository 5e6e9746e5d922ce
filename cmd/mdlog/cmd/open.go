package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"mdlog/internal/schema"
	"mdlog/internal/store"
)

// kindArg validates the single <kind> argument shared by the per-file commands.
func kindArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	_, err := schema.ParseKind(args[0])
	return err
}

func addFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "read this file instead of <day dir>/<kind>.bin")
}

// openKind maps the file of the given kind, or the --file override.
func openKind(cmd *cobra.Command, name string) (*store.Store, error) {
	kind, err := schema.ParseKind(name)
	if err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = filepath.Join(state.cfg.DayPath(), kind.FileName())
	}
	return store.New(store.Config{
		Path:         path,
		Kind:         kind,
		ChunkRecords: state.cfg.ChunkRecords,
		Metrics:      state.metrics,
	})
}
