package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mdlog/internal/store"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the header of every log file in the day directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir := state.cfg.DayPath()
		files, err := store.Inspect(dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "directory: %s\n", dir)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tLAYOUT\tMAGIC\tVERSION\tSIZE\tRECORDS\tWRITE_OFFSET\tFILE_BYTES\tSTATUS")
		for _, fi := range files {
			switch {
			case !fi.Present:
				fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\t-\tmissing\n", fi.Kind)
			case fi.Err != nil:
				fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\t%d\t%v\n", fi.Kind, fi.Size, fi.Err)
			default:
				h := fi.Header
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\tok\n",
					fi.Kind, fi.Layout(), h.MagicString(), h.Version, h.StructSize, h.RecordCount, h.WriteOffset, fi.Size)
			}
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
