package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/nathoo/worldnav/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate [world]",
	Short: "Import a world and report its contents and problems",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.World.File
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no world given")
		}

		out := cmd.OutOrStdout()
		w, warnings, err := loader.Load(path, log)
		if err != nil {
			var ve *loader.ValidationError
			if errors.As(err, &ve) {
				for _, msg := range ve.Errors {
					fmt.Fprintf(out, "error: %s\n", msg)
				}
				for _, msg := range ve.Warnings {
					fmt.Fprintf(out, "warning: %s\n", msg)
				}
			}
			return err
		}

		st := loader.Stats(w)
		fmt.Fprintf(out, "World %s\n", w.Source)
		fmt.Fprintf(out, "  entries:   %s\n", humanize.Comma(int64(st.Entries)))
		fmt.Fprintf(out, "  regions:   %s\n", humanize.Comma(int64(st.Regions)))
		fmt.Fprintf(out, "  paths:     %s\n", humanize.Comma(int64(st.Paths)))
		fmt.Fprintf(out, "  landmarks: %s\n", humanize.Comma(int64(st.Landmarks)))
		for _, msg := range warnings {
			fmt.Fprintf(out, "warning: %s\n", msg)
		}
		if len(warnings) > 0 {
			fmt.Fprintf(out, "%s\n", english.Plural(len(warnings), "warning", "warnings"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
