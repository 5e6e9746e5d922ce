package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"mdlog/internal/export"
	"mdlog/internal/schema"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Split the day's files into per-symbol text files in one pass per file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fl := cmd.Flags()
		cfg := state.cfg
		override(cmd, "symbols", &cfg.SymbolsFile)
		override(cmd, "out", &cfg.OutputDir)
		override(cmd, "end", &cfg.EndTime)
		if cfg.SymbolsFile == "" {
			return fmt.Errorf("export: a symbols file is required (--symbols)")
		}
		end, err := cfg.EndClock()
		if err != nil {
			return err
		}
		symbols, err := export.LoadSymbols(cfg.SymbolsFile)
		if err != nil {
			return err
		}

		kinds := export.DefaultKinds
		if names, _ := fl.GetStringSlice("kinds"); len(names) > 0 {
			kinds = kinds[:0:0]
			for _, n := range names {
				k, err := schema.ParseKind(n)
				if err != nil {
					return err
				}
				kinds = append(kinds, k)
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "loaded %d symbols from %s\noutput directory: %s\n", len(symbols), cfg.SymbolsFile, cfg.OutputDir)
		if end.IsSome() {
			fmt.Fprintf(out, "end time filter: %s\n", cfg.EndTime)
		}

		// one bar over all kinds, 100 units per kind
		bar := progressbar.NewOptions(100*len(kinds),
			progressbar.OptionSetDescription("exporting"),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionClearOnFinish(),
		)
		var (
			mu   sync.Mutex
			done = make(map[schema.Kind]int, len(kinds))
		)
		onProgress := func(p export.Progress) {
			mu.Lock()
			defer mu.Unlock()
			done[p.Kind] = int(p.Percent())
			sum := 0
			for _, v := range done {
				sum += v
			}
			_ = bar.Set(sum)
		}

		res, err := export.Dir(cmd.Context(), export.DirConfig{
			DataDir:      cfg.DayPath(),
			OutputDir:    cfg.OutputDir,
			Symbols:      symbols,
			Kinds:        kinds,
			ChunkRecords: cfg.ChunkRecords,
			Export: export.Config{
				EndTime:          end,
				ProgressStep:     cfg.Export.ProgressStep,
				ProgressInterval: cfg.Export.ProgressInterval,
				OnProgress:       onProgress,
				Metrics:          state.metrics,
			},
		})
		_ = bar.Finish()
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nexport completed in %.1f seconds\n", res.Elapsed.Seconds())
		for _, k := range res.Missing {
			fmt.Fprintf(out, "warning: %s not found\n", k.FileName())
		}
		fmt.Fprintln(out, "\nper-symbol statistics:")
		for _, code := range symbols.Sorted() {
			fmt.Fprintf(out, "  %s: orders=%d, transactions=%d, ticks=%d\n", schema.FullSymbol(code),
				res.Count(schema.KindOrder, code), res.Count(schema.KindTransaction, code), res.Count(schema.KindTick, code))
		}
		return res.Err()
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <kind>",
	Short: "Write a file as ClickHouse TabSeparated rows",
	Args:  kindArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		fl := cmd.Flags()
		st, err := openKind(cmd, args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		cfg := export.DumpConfig{Workers: state.cfg.Export.DumpWorkers}
		if fl.Changed("workers") {
			cfg.Workers, _ = fl.GetInt("workers")
		}
		cfg.Limit, _ = fl.GetUint64("limit")

		w := cmd.OutOrStdout()
		if path, _ := fl.GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		bw := bufio.NewWriterSize(w, 1<<20)
		if _, err := export.Dump(cmd.Context(), st, bw, cfg); err != nil {
			return err
		}
		return bw.Flush()
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <file>...",
	Short: "Re-read exported text files and report malformed lines",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		var bad uint64
		for _, path := range args {
			rep, err := export.VerifyFile(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d lines, %d bad, %d symbols, %d backwards, MDTime %d..%d\n",
				path, rep.Lines, rep.Bad, len(rep.Symbols), rep.Backwards, rep.FirstTime, rep.LastTime)
			if rep.Bad > 0 {
				fmt.Fprintf(out, "  first bad line %d\n", rep.FirstBad)
			}
			bad += rep.Bad
		}
		if bad > 0 {
			return fmt.Errorf("verify: %d malformed lines", bad)
		}
		return nil
	},
}

func init() {
	fl := exportCmd.Flags()
	fl.String("symbols", "", "symbol list file, one code per line")
	fl.StringP("out", "o", "", "output directory")
	fl.String("end", "", "skip records at or after HHMMSS")
	fl.StringSlice("kinds", nil, "kinds to export (default order,transaction,tick)")

	dumpCmd.Flags().Int("workers", 0, "formatting goroutines (default CPU count)")
	dumpCmd.Flags().Uint64("limit", 0, "dump only the first records, 0 dumps all")
	dumpCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	addFileFlag(dumpCmd)

	rootCmd.AddCommand(exportCmd, dumpCmd, verifyCmd)
}
