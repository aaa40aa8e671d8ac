// Package command turns typed input ("pause", "goto 3", "set 1:30") into run
// session actions. The terminal prompt and the remote control share it.
package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/dojotimer/internal/logger"
)

// Action is a session action named by a command.
type Action int

const (
	ActionUnknown Action = iota
	ActionStart
	ActionPause
	ActionResume
	ActionToggle
	ActionReset
	ActionStop
	ActionNext
	ActionPrev
	ActionGoto
	ActionSetDuration
	ActionStatus
	ActionHelp
	ActionQuit
)

var actionNames = map[Action]string{
	ActionUnknown:     "unknown",
	ActionStart:       "start",
	ActionPause:       "pause",
	ActionResume:      "resume",
	ActionToggle:      "toggle",
	ActionReset:       "reset",
	ActionStop:        "stop",
	ActionNext:        "next",
	ActionPrev:        "prev",
	ActionGoto:        "goto",
	ActionSetDuration: "set",
	ActionStatus:      "status",
	ActionHelp:        "help",
	ActionQuit:        "quit",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Command is a parsed input line. Arg is the 0-based step index for
// ActionGoto and the duration in seconds for ActionSetDuration.
type Command struct {
	Action Action
	Arg    int
	Input  string
}

// Parser matches input to commands using keywords and simple patterns.
type Parser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	action Action
}

var (
	gotoPattern = regexp.MustCompile(`(?i)^(?:goto|go to|step|skip to|jump)\s+(\d+)$`)
	setPattern  = regexp.MustCompile(`(?i)^(?:set|time|duration)\s+(\S+)$`)
	clockValue  = regexp.MustCompile(`^(\d+):([0-5]\d)$`)
)

// NewParser creates a keyword command parser.
func NewParser(log *logger.Logger) *Parser {
	p := &Parser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(start|go|begin|hajime)$`), ActionStart},
		{regexp.MustCompile(`(?i)^(pause|wait|p|matte)$`), ActionPause},
		{regexp.MustCompile(`(?i)^(resume|continue|unpause|c)$`), ActionResume},
		{regexp.MustCompile(`(?i)^(space|toggle|t)$`), ActionToggle},
		{regexp.MustCompile(`(?i)^(reset|restart|r)$`), ActionReset},
		{regexp.MustCompile(`(?i)^(stop|home|soremade)$`), ActionStop},
		{regexp.MustCompile(`(?i)^(next|n|skip|s|>)$`), ActionNext},
		{regexp.MustCompile(`(?i)^(prev|previous|back|b|<)$`), ActionPrev},
		{regexp.MustCompile(`(?i)^(status|where|info|i)$`), ActionStatus},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), ActionHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), ActionQuit},
	}
	return p
}

// Parse converts input into a command. Unrecognized input yields
// ActionUnknown; Parse never fails.
func (p *Parser) Parse(input string) Command {
	trimmed := strings.TrimSpace(input)
	cmd := Command{Action: ActionUnknown, Input: trimmed}
	if trimmed == "" {
		return cmd
	}

	p.log.Debug("parsing input: %q", trimmed)

	// A bare number jumps to that step.
	if n, err := strconv.Atoi(trimmed); err == nil && n > 0 {
		cmd.Action, cmd.Arg = ActionGoto, n-1
		return cmd
	}

	if m := gotoPattern.FindStringSubmatch(trimmed); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			cmd.Action, cmd.Arg = ActionGoto, n-1
		}
		return cmd
	}

	if m := setPattern.FindStringSubmatch(trimmed); m != nil {
		if sec, err := ParseSeconds(m[1]); err == nil {
			cmd.Action, cmd.Arg = ActionSetDuration, sec
		}
		return cmd
	}

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched command: %s", rule.action)
			cmd.Action = rule.action
			return cmd
		}
	}

	p.log.Debug("no match for %q", trimmed)
	return cmd
}

// ParseSeconds reads a duration written as plain seconds ("90"), as
// minutes and seconds ("1:30") or in Go duration syntax ("2m", "1m30s").
func ParseSeconds(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return n, nil
	}
	if m := clockValue.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		sec, _ := strconv.Atoi(m[2])
		return mins*60 + sec, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return int(d.Round(time.Second) / time.Second), nil
}

// Help lists the accepted commands.
const Help = `commands:
  start | go          start (with the ready countdown) or resume
  pause | p           pause
  resume | c          resume
  toggle | t          pause or resume
  next | n            jump to the next step
  prev | b            jump to the previous step
  goto N | N          jump to step N
  set 90 | set 1:30   change the current step's duration
  reset | r           back to the first step, keeping edits
  stop | home         stop and restore the program as written
  status              show the current step
  quit | q            exit`
