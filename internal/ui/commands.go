package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/siegfried/focuscharge/internal/stats"
	"github.com/siegfried/focuscharge/internal/timer"
)

// ErrUnknownCommand is returned for input that is not a console command
var ErrUnknownCommand = errors.New("unknown command")

// Action is a console command verb
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionPause
	ActionResume
	ActionToggle
	ActionStop
	ActionAddTime
	ActionUseCharge
	ActionRefresh
	ActionStats
	ActionHelp
	ActionQuit
)

// defaultAddSeconds is what "a" without an argument adds
const defaultAddSeconds = 60

// Command is one parsed input line
type Command struct {
	Action  Action
	Seconds float64
}

// Controller is the engine surface the console drives
type Controller interface {
	Start()
	Pause()
	Resume()
	Stop()
	AddTime(seconds float64)
	UseBreakCharge() bool
	Refresh()
	Status() timer.Status
}

// Summarizer provides the daily statistics shown by the "t" command
type Summarizer interface {
	DailySummary(date time.Time) (*stats.DailySummary, error)
}

// HelpText lists the console commands
const HelpText = "s start · p pause · r resume · <enter> pause/resume · x stop · a [sec] add time · c use charge · u refresh · t today · h help · q quit"

// ParseCommand parses one input line
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{Action: ActionToggle}, nil
	}

	switch fields[0] {
	case "s", "start":
		return Command{Action: ActionStart}, nil
	case "p", "pause":
		return Command{Action: ActionPause}, nil
	case "r", "resume":
		return Command{Action: ActionResume}, nil
	case "x", "stop":
		return Command{Action: ActionStop}, nil
	case "c", "charge":
		return Command{Action: ActionUseCharge}, nil
	case "u", "refresh":
		return Command{Action: ActionRefresh}, nil
	case "t", "today":
		return Command{Action: ActionStats}, nil
	case "h", "help", "?":
		return Command{Action: ActionHelp}, nil
	case "q", "quit", "exit":
		return Command{Action: ActionQuit}, nil
	case "a", "add":
		cmd := Command{Action: ActionAddTime, Seconds: defaultAddSeconds}
		if len(fields) > 1 {
			secs, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || secs <= 0 {
				return Command{}, fmt.Errorf("invalid number of seconds %q", fields[1])
			}
			cmd.Seconds = secs
		}
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

// Session runs console input against one engine
type Session struct {
	Console    *Console
	Controller Controller
	Summarizer Summarizer
	Now        func() time.Time
}

// Run reads commands line by line until quit, EOF, or ctx is done
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			cmd, err := ParseCommand(line)
			if err != nil {
				s.Console.Warn(err.Error())
				continue
			}
			if cmd.Action == ActionQuit {
				return nil
			}
			s.Execute(cmd)
		}
	}
}

// Execute applies a single command
func (s *Session) Execute(cmd Command) {
	ctl := s.Controller
	switch cmd.Action {
	case ActionStart:
		ctl.Start()
	case ActionPause:
		ctl.Pause()
	case ActionResume:
		ctl.Resume()
	case ActionToggle:
		switch ctl.Status() {
		case timer.StatusCounting:
			ctl.Pause()
		case timer.StatusPaused:
			ctl.Resume()
		}
	case ActionStop:
		ctl.Stop()
	case ActionAddTime:
		ctl.AddTime(cmd.Seconds)
	case ActionUseCharge:
		if !ctl.UseBreakCharge() {
			s.Console.Warn("no break charge available")
		}
	case ActionRefresh:
		ctl.Refresh()
	case ActionStats:
		s.Console.Println(s.todayText())
	case ActionHelp:
		s.Console.Println(HelpText)
	}
}

// todayText summarizes today's sessions
func (s *Session) todayText() string {
	if s.Summarizer == nil {
		return "Today: no data"
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	summary, err := s.Summarizer.DailySummary(now())
	if err != nil {
		return "Today: no data"
	}
	return fmt.Sprintf("Today: %d work · %d breaks · %s focused · %d charges used (%.0f%% completed)",
		summary.WorkSessionsCompleted,
		summary.BreakSessionsCompleted,
		FormatMinutes(summary.WorkMinutes),
		summary.ChargesUsed,
		summary.CompletionRate)
}

// FormatMinutes renders a minute count with humanized thousands
func FormatMinutes(minutes float64) string {
	if minutes < 60 {
		return fmt.Sprintf("%.0fm", minutes)
	}
	h := int(minutes) / 60
	return fmt.Sprintf("%sh%02dm", humanize.Comma(int64(h)), int(minutes)%60)
}
