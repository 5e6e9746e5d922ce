package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mdlog/internal/schema"
	"mdlog/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <kind>",
	Short: "Check per-channel ApplSeqNum and MDTime ordering",
	Args:  kindArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := state.cfg.Validate
		if fl := cmd.Flags(); fl.Changed("max") {
			cfg.MaxRecords, _ = fl.GetUint64("max")
		}
		v, err := validate.New(validate.Config{
			MinRecords: cfg.MinRecords,
			MaxRecords: cfg.MaxRecords,
			Samples:    cfg.Samples,
		})
		if err != nil {
			return err
		}
		st, err := openKind(cmd, args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		rep, err := v.Run(cmd.Context(), st)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: scanned %d records, %d channels, %d below %d records skipped\n",
			rep.Layout, rep.Scanned, len(rep.Channels), rep.Skipped, cfg.MinRecords)
		for _, c := range rep.Channels {
			status := "OK"
			if c.SeqViolations > 0 || c.TimeViolations > 0 {
				status = "VIOLATIONS"
			}
			fmt.Fprintf(out, "\nchannel %d: %d records, seq violations %d, time violations %d [%s]\n",
				c.Channel, c.Records, c.SeqViolations, c.TimeViolations, status)
			printSamples(out, "first", c.Head)
			printSamples(out, "last", c.Tail)
		}
		seq, tm := rep.Violations()
		fmt.Fprintf(out, "\ntotal seq violations %d, time violations %d\n", seq, tm)
		return nil
	},
}

func printSamples(w io.Writer, label string, samples []validate.Sample) {
	for _, s := range samples {
		fmt.Fprintf(w, "  %s #%d %s seq=%d %s\n", label, s.Index, schema.FormatClock(s.Time), s.Seq, s.Symbol)
	}
}

var censusCmd = &cobra.Command{
	Use:   "census <kind>",
	Short: "Count records per channel and group symbols by their first channel",
	Args:  kindArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openKind(cmd, args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		c, err := validate.TakeCensus(cmd.Context(), st)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d records, %d channels, %d symbols\n", c.Layout, c.Records, len(c.Channels), len(c.FirstChannel))
		groups := c.SymbolsByFirstChannel()
		limit, _ := cmd.Flags().GetInt("symbols")
		for _, ch := range c.SortedChannels() {
			syms := groups[ch]
			fmt.Fprintf(out, "channel %d: %d records, %d symbols", ch, c.Channels[ch], len(syms))
			if limit > 0 && len(syms) > 0 {
				fmt.Fprintf(out, " [%s", strings.Join(syms[:min(limit, len(syms))], " "))
				if len(syms) > limit {
					fmt.Fprint(out, " ...")
				}
				fmt.Fprint(out, "]")
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Uint64("max", 0, "scan only the first records, 0 scans all")
	addFileFlag(validateCmd)

	censusCmd.Flags().Int("symbols", 10, "symbols listed per channel")
	addFileFlag(censusCmd)

	rootCmd.AddCommand(validateCmd, censusCmd)
}
