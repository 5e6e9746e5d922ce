package cmd

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/spf13/cobra"

	"mdlog/internal/scan"
	"mdlog/internal/schema"
)

var tailCmd = &cobra.Command{
	Use:   "tail <kind>",
	Short: "Print the last records of a file",
	Args:  kindArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openKind(cmd, args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		n, _ := cmd.Flags().GetUint64("count")
		hits, err := scan.Tail(st, min(n, st.Len()))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, h := range hits {
			printHit(out, h)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <kind>",
	Short: "Print one page of records matching a symbol, channel and time window",
	Args:  kindArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFlags(cmd)
		if err != nil {
			return err
		}
		st, err := openKind(cmd, args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")
		p, err := scan.Paginate(st, f, page, size)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, h := range p.Hits {
			printHit(out, h)
		}
		fmt.Fprintf(out, "page %d/%d, %d matches of %d records\n", p.Number, p.Pages(), p.Total, st.Len())
		return nil
	},
}

func addFilterFlags(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringP("symbol", "s", "", "symbol substring, e.g. 600000")
	fl.Int32("channel", 0, "channel number")
	fl.String("start", "", "first MDTime to include, HHMMSS")
	fl.String("end", "", "first MDTime to exclude, HHMMSS")
}

func filterFlags(cmd *cobra.Command) (scan.Filter, error) {
	fl := cmd.Flags()
	var f scan.Filter
	f.Symbol, _ = fl.GetString("symbol")
	if fl.Changed("channel") {
		ch, _ := fl.GetInt32("channel")
		f.Channel = optional.Some(ch)
	}
	for flag, dst := range map[string]*optional.Option[int32]{"start": &f.StartTime, "end": &f.EndTime} {
		s, _ := fl.GetString(flag)
		if s == "" {
			continue
		}
		v, err := schema.ParseClock(s)
		if err != nil {
			return scan.Filter{}, err
		}
		*dst = optional.Some(v)
	}
	return f, nil
}

func init() {
	tailCmd.Flags().Uint64P("count", "n", 10, "number of records")
	addFileFlag(tailCmd)

	searchCmd.Flags().Int("page", 1, "page number, from 1")
	searchCmd.Flags().Int("size", 20, "records per page")
	addFilterFlags(searchCmd)
	addFileFlag(searchCmd)

	rootCmd.AddCommand(tailCmd, searchCmd)
}
