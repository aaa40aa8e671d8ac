package command

import (
	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/session"
)

// Controller is the run session action surface.
type Controller interface {
	Start() session.View
	Pause() session.View
	Resume() session.View
	Reset() session.View
	Stop() session.View
	Next() session.View
	Prev() session.View
	SkipToStep(i int) session.View
	UpdateActiveTimerDuration(sec int) session.View
	View() session.View
}

// Compile-time interface check.
var _ Controller = (*session.Session)(nil)

// Dispatch runs cmd against c. It reports false for commands that are not
// session actions (help, quit, unknown); the view is still current.
func Dispatch(c Controller, cmd Command) (session.View, bool) {
	switch cmd.Action {
	case ActionStart:
		return c.Start(), true
	case ActionPause:
		return c.Pause(), true
	case ActionResume:
		return c.Resume(), true
	case ActionToggle:
		if c.View().Status == domain.StatusRunning {
			return c.Pause(), true
		}
		return c.Start(), true
	case ActionReset:
		return c.Reset(), true
	case ActionStop:
		return c.Stop(), true
	case ActionNext:
		return c.Next(), true
	case ActionPrev:
		return c.Prev(), true
	case ActionGoto:
		return c.SkipToStep(cmd.Arg), true
	case ActionSetDuration:
		return c.UpdateActiveTimerDuration(cmd.Arg), true
	case ActionStatus:
		return c.View(), true
	default:
		return c.View(), false
	}
}
