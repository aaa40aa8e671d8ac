package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/dojotimer/internal/cue"
	"github.com/hammamikhairi/dojotimer/internal/display"
	"github.com/hammamikhairi/dojotimer/internal/expand"
	"github.com/hammamikhairi/dojotimer/internal/remote"
	"github.com/hammamikhairi/dojotimer/internal/session"
	"github.com/hammamikhairi/dojotimer/internal/timer"
)

var runCmd = &cobra.Command{
	Use:   "run <program-id|file>",
	Short: "Play a program in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProgram(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runProgram(parent context.Context, ref string) error {
	// Cancelled when the UI quits.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	store, closeStore := openStore(cfg, log)
	defer closeStore()

	catalog := loadCatalog(cfg, log)
	prog, err := catalog.Resolve(ctx, ref, store)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	sess := session.New(newPlayer(cfg, log), log,
		session.WithStore(store),
		session.WithReadyCountdown(!cfg.NoCountdown && cfg.CountdownSeconds > 0),
		session.WithExpandOptions(expand.WithInfiniteSets(cfg.InfiniteSets)),
		session.WithCueOptions(cue.WithCountdown(cfg.CountdownSeconds, cfg.Tick)),
	)
	defer sess.Close()

	if _, err := sess.Load(ctx, *prog); err != nil {
		// The program is loaded even when recording it fails.
		log.Warn("%v", err)
	}

	supervisor := timer.New(sess, log, timer.WithTickInterval(cfg.Tick))
	supervisor.Start(ctx)
	defer supervisor.Stop()

	ui := display.NewUI(sess)

	if cfg.Listen != "" {
		srv := remote.New(sess, log)
		log.Go(func() {
			if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
				log.Error("%v", err)
				ui.PrintUrgent(fmt.Sprintf("Remote control stopped: %v", err))
			}
		})
	}

	app := newApp(sess, ui, log)

	fmt.Println(display.RenderBanner(prog.Title))
	if cfg.Listen != "" {
		fmt.Println(display.BannerStyle.Render("  Remote control on " + cfg.Listen))
	}
	fmt.Println(display.BannerStyle.Render("  Type 'start' to begin, 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	log.Go(func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	})

	// Bubble Tea owns the terminal and blocks until quit.
	if err := ui.Run(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("display: %v", err)
		return err
	}
	cancel()
	return nil
}
