package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/worldnav/cli"
	"github.com/nathoo/worldnav/engine"
	"github.com/nathoo/worldnav/loader"
	"github.com/nathoo/worldnav/tui"
	"github.com/nathoo/worldnav/types"
)

var (
	playSession     string
	playPlain       bool
	playScript      string
	playTrace       bool
	playSticky      bool
	playAutoConfirm bool
	playWatch       bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the interactive host simulator",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWorld()
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		settings := cfg.Settings()
		if cmd.Flags().Changed("sticky") {
			settings.StickyLocation = playSticky
		}
		if cmd.Flags().Changed("auto-confirm") {
			settings.AutoConfirm = playAutoConfirm
		}
		eng := engine.New(w, cfg.ResolverScale(), settings, st, log)

		// Script mode: open file, force plain, echo commands.
		if playScript != "" {
			f, err := os.Open(playScript)
			if err != nil {
				return fmt.Errorf("opening script: %w", err)
			}
			defer f.Close()
			c := cli.New(eng, playSession)
			c.In = f
			c.EchoInput = true
			c.Trace = playTrace
			c.Run()
			return nil
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		watch := playWatch || cfg.World.Watch

		// Use plain CLI if --plain flag or stdout is not a terminal.
		if playPlain || !isTerminal() {
			if watch {
				stop, err := startWatcher(ctx, eng, nil)
				if err != nil {
					return err
				}
				defer stop()
			}
			c := cli.New(eng, playSession)
			c.Trace = playTrace
			c.Run()
			return nil
		}

		m := tui.New(eng, playSession)
		p := tui.NewProgram(m)
		if watch {
			stop, err := startWatcher(ctx, eng, p.Send)
			if err != nil {
				return err
			}
			defer stop()
		}
		_, err = p.Run()
		return err
	},
}

func init() {
	playCmd.Flags().StringVar(&playSession, "session", "", "Chat session id (default: a fresh uuid)")
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "Use the line-oriented interface")
	playCmd.Flags().StringVar(&playScript, "script", "", "Replay input lines from a file")
	playCmd.Flags().BoolVar(&playTrace, "trace", false, "Print engine events after each turn")
	playCmd.Flags().BoolVar(&playSticky, "sticky", false, "Inject the analysis on every turn")
	playCmd.Flags().BoolVar(&playAutoConfirm, "auto-confirm", false, "Accept AI proposals without player confirmation")
	playCmd.Flags().BoolVar(&playWatch, "watch", false, "Reload the world when its files change")
	rootCmd.AddCommand(playCmd)
}

// startWatcher swaps reloaded worlds into the engine. send, when set,
// forwards reload notices to the TUI.
func startWatcher(ctx context.Context, eng *engine.Engine, send func(tea.Msg)) (func(), error) {
	if cfg.World.File == "" {
		return nil, fmt.Errorf("--watch needs a world file")
	}
	wt, err := loader.NewWatcher(cfg.World.File, log)
	if err != nil {
		return nil, fmt.Errorf("watching world: %w", err)
	}
	wt.OnLoad = func(w *types.World, warnings []string) {
		eng.SetWorld(w)
		if send != nil {
			send(tui.WorldReloadedMsg{World: w, Warnings: warnings})
		}
	}
	wt.OnError = func(err error) {
		log.Warn("world reload failed", zap.Error(err))
		if send != nil {
			send(tui.WorldErrorMsg{Err: err})
		}
	}
	if err := wt.Start(ctx); err != nil {
		wt.Stop()
		return nil, err
	}
	return wt.Stop, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
