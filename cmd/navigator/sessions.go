package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nathoo/worldnav/cli"
	"github.com/nathoo/worldnav/engine/state"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No stored sessions.")
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(out, "%-36s  %-16s  %-20s  %s\n",
				r.ID, state.Phase(r.State), cli.FormatPoint(r.State.CurrentLocation), humanize.Time(r.UpdatedAt))
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one session's state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		s, ok, err := st.Load(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("session %q not found", args[0])
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Session:  %s\n", args[0])
		fmt.Fprintf(out, "Phase:    %s\n", state.Phase(s))
		fmt.Fprintf(out, "Location: %s\n", cli.FormatPoint(s.CurrentLocation))
		if s.ConfirmationPending {
			fmt.Fprintf(out, "Proposed: %s\n", cli.FormatPoint(s.ProposedLocation))
		}
		if s.LastAnalysis != "" {
			fmt.Fprintf(out, "Analysis: %s\n", s.LastAnalysis)
		}
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ClearAll(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All sessions cleared.")
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsClearCmd)
	rootCmd.AddCommand(sessionsCmd)
}
