package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/dojotimer/internal/command"
	"github.com/hammamikhairi/dojotimer/internal/cue"
	"github.com/hammamikhairi/dojotimer/internal/display"
	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/logger"
	"github.com/hammamikhairi/dojotimer/internal/session"
	"github.com/hammamikhairi/dojotimer/internal/title"
)

// cliApp reads prompt input and turns it into session actions. Engine and
// cue events are queued by listeners and printed from the run loop, so no
// listener ever blocks the engine.
type cliApp struct {
	sess   *session.Session
	ui     *display.UI
	parser *command.Parser
	log    *logger.Logger

	transitions chan domain.Transition
	cueErrs     chan cue.Fired
}

func newApp(sess *session.Session, ui *display.UI, log *logger.Logger) *cliApp {
	return &cliApp{
		sess:        sess,
		ui:          ui,
		parser:      command.NewParser(log),
		log:         log,
		transitions: make(chan domain.Transition, 32),
		cueErrs:     make(chan cue.Fired, 8),
	}
}

func (a *cliApp) run(ctx context.Context) {
	unlistenTr := a.sess.Transitions().Listen(func(tr domain.Transition) {
		select {
		case a.transitions <- tr:
		default:
			a.log.Debug("app: transition queue full, dropping %s", tr.Kind)
		}
	})
	defer unlistenTr()

	unlistenCue := a.sess.Cues().Fired().Listen(func(f cue.Fired) {
		if f.Err == nil || errors.Is(f.Err, cue.ErrCanceled) || errors.Is(f.Err, context.Canceled) {
			return
		}
		select {
		case a.cueErrs <- f:
		default:
		}
	})
	defer unlistenCue()

	a.showPlan()

	uiCh := a.ui.InputChan()
	for {
		select {
		case <-ctx.Done():
			return
		case tr := <-a.transitions:
			a.showTransition(tr)
		case f := <-a.cueErrs:
			a.ui.PrintUrgent(fmt.Sprintf("%s cue failed: %v", f.Kind, f.Err))
		case input, ok := <-uiCh:
			if !ok {
				return
			}
			if quit := a.handle(input); quit {
				return
			}
		}
	}
}

// handle runs one prompt line and reports whether the user asked to quit.
func (a *cliApp) handle(input string) bool {
	cmd := a.parser.Parse(input)
	a.log.Debug("command: %s (arg=%d)", cmd.Action, cmd.Arg)

	switch cmd.Action {
	case command.ActionQuit:
		a.sess.Stop()
		a.ui.PrintHint("Bye.")
		return true
	case command.ActionHelp:
		a.showHelp()
		return false
	case command.ActionUnknown:
		if cmd.Input != "" {
			a.ui.PrintHint(fmt.Sprintf("Didn't catch %q. Type 'help' for commands.", cmd.Input))
		}
		return false
	}

	v, _ := command.Dispatch(a.sess, cmd)
	a.ui.PrintInfo(display.FormatView(v))
	return false
}

func (a *cliApp) showTransition(tr domain.Transition) {
	total := len(a.sess.Steps())
	switch tr.Kind {
	case domain.TransitionStarted, domain.TransitionAdvanced, domain.TransitionNavigated:
		a.ui.PrintStep(fmt.Sprintf("Step %d/%d  %s", tr.ToIndex+1, total, title.ForStep(tr.Step)))
	case domain.TransitionFinished:
		a.ui.PrintStep("Program complete. Otsukaresama deshita!")
		a.ui.PrintHint("Type 'start' to run it again.")
	}
}

func (a *cliApp) showPlan() {
	p := a.sess.Program()
	if p == nil {
		return
	}
	steps := a.sess.Steps()
	a.ui.PrintStep(fmt.Sprintf("%s: %d steps, %s", p.Title, len(steps), formatSeconds(domain.TotalDuration(steps))))
}

func (a *cliApp) showHelp() {
	for _, line := range strings.Split(command.Help, "\n") {
		a.ui.PrintInfo(line)
	}
}
