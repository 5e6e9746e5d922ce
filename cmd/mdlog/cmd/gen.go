package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mdlog/internal/codec"
	"mdlog/internal/mdg"
	"mdlog/internal/schema"
	"mdlog/internal/store"
)

const genBatch = 4096

var genCmd = &cobra.Command{
	Use:   "gen <kind>",
	Short: "Write a synthetic log file, for tests and demos",
	Args:  kindArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		fl := cmd.Flags()
		kind, _ := schema.ParseKind(args[0])
		count, _ := fl.GetInt("count")
		if count < 0 {
			return fmt.Errorf("gen: count must be >= 0")
		}

		gen := schema.V2
		if v1, _ := fl.GetBool("v1"); v1 {
			gen = schema.V1
		}
		layout := codec.LayoutFor(kind, gen)

		symbols, _ := fl.GetStringSlice("symbols")
		g, err := mdg.NewGenerator(mdg.Config{Symbols: symbols, Generation: gen})
		if err != nil {
			return err
		}

		dir := state.cfg.DayPath()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(dir, kind.FileName())
		prealloc, _ := fl.GetUint64("preallocate")
		a, err := store.Create(path, layout, store.AppendOptions{Preallocate: prealloc})
		if err != nil {
			return err
		}
		defer a.Close()

		for left := count; left > 0; left -= genBatch {
			recs, err := g.Fill(kind, min(left, genBatch))
			if err != nil {
				return err
			}
			if err := a.Append(recs...); err != nil {
				return err
			}
		}
		if err := a.Sync(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: wrote %d %s records\n", path, a.Count(), layout)
		return a.Close()
	},
}

func init() {
	fl := genCmd.Flags()
	fl.Int("count", 1000, "records to write")
	fl.Bool("v1", false, "write the V1 layout")
	fl.StringSlice("symbols", nil, "bare codes to rotate through")
	fl.Uint64("preallocate", 0, "extend the file to hold this many records up front")
	rootCmd.AddCommand(genCmd)
}
