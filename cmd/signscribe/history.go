package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List spoken sentences, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transcripts, err := DB.Transcripts().List(historyLimit)
		if err != nil {
			return fmt.Errorf("list transcripts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(transcripts) == 0 {
			fmt.Fprintln(out, "No transcripts found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "SPOKEN\tSESSION\tTEXT")
		fmt.Fprintln(w, "------\t-------\t----")
		for _, t := range transcripts {
			session := t.SessionID
			if len(session) > 8 {
				session = session[:8]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"), session, t.Text)
		}
		return w.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored transcripts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := DB.Transcripts().Clear()
		if err != nil {
			return fmt.Errorf("clear transcripts: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d transcripts.\n", n)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of transcripts to show (0 for all)")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
