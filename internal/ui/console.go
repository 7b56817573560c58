package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/siegfried/focuscharge/internal/timer"
)

// ErrSurfaceGone is returned by a closed console
var ErrSurfaceGone = errors.New("console surface is closed")

const progressWidth = 10

// Console renders engine events to a terminal
type Console struct {
	out      io.Writer
	styles   styles
	closed   bool
	inPlace  int
	lastSnap timer.Snapshot
	mu       sync.Mutex
}

var (
	_ timer.Sink     = (*Console)(nil)
	_ timer.Notifier = (*Console)(nil)
)

// NewConsole creates a console writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, styles: newStyles()}
}

// Deliver renders one event. Ticks rewrite the status line in place; other
// events print a full line.
func (c *Console) Deliver(ev timer.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSurfaceGone
	}
	c.lastSnap = ev.Snapshot

	title := c.statusTitle(ev.Snapshot)
	if !ev.Expensive() {
		pad := ""
		width := lipgloss.Width(title)
		if width < c.inPlace {
			pad = strings.Repeat(" ", c.inPlace-width)
		}
		c.inPlace = width
		_, err := fmt.Fprint(c.out, "\r"+title+pad)
		return err
	}

	c.breakLineLocked()
	_, err := fmt.Fprintln(c.out, title+"  "+c.statusInfo(ev.Snapshot))
	return err
}

// Notify announces the end of a session
func (c *Console) Notify(n timer.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if n.RequestSound {
		fmt.Fprint(c.out, "\a")
	}
	if n.RequestVisibleNotification {
		c.breakLineLocked()
		fmt.Fprintln(c.out, c.styles.banner.Render(fmt.Sprintf("Your %s session has ended!", n.Ended)))
	}
}

// Println writes a message on its own line
func (c *Console) Println(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.breakLineLocked()
	fmt.Fprintln(c.out, msg)
}

// Warn writes a highlighted message on its own line
func (c *Console) Warn(msg string) {
	c.Println(c.styles.warning.Render(msg))
}

// Last returns the most recently rendered snapshot
func (c *Console) Last() timer.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSnap
}

// Close detaches the console. Later deliveries fail with ErrSurfaceGone.
func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.breakLineLocked()
	c.closed = true
}

func (c *Console) breakLineLocked() {
	if c.inPlace > 0 {
		fmt.Fprintln(c.out)
		c.inPlace = 0
	}
}

// statusTitle returns the short countdown label
func (c *Console) statusTitle(s timer.Snapshot) string {
	clock := FormatClock(s.TimeLeft)

	if s.Status == timer.StatusPaused {
		return c.styles.paused.Render("⏸ Paused " + clock)
	}

	switch s.Session {
	case timer.KindWork:
		return c.styles.work.Render("⏱ Work " + clock)
	case timer.KindBreak:
		return c.styles.rest.Render("☕ Break " + clock)
	case timer.KindTransition:
		return c.styles.transition.Render("↔ Transition " + clock)
	default:
		return c.styles.idle.Render("■ Stopped")
	}
}

// statusInfo returns the charge details shown on full refreshes
func (c *Console) statusInfo(s timer.Snapshot) string {
	parts := []string{
		fmt.Sprintf("charges %d", s.ChargesLeft),
		c.progressBar(s.ChargeProgressPercentage),
	}
	if s.IsOnCooldown {
		parts = append(parts, fmt.Sprintf("cooldown %d", s.CooldownBreaksLeft))
	}
	if s.ChargeUsedThisSession {
		parts = append(parts, "charge used")
	}
	return c.styles.detail.Render(strings.Join(parts, " · "))
}

func (c *Console) progressBar(percent float64) string {
	filled := int(percent / 100 * progressWidth)
	filled = max(0, min(progressWidth, filled))
	return "[" +
		c.styles.barFill.Render(strings.Repeat("#", filled)) +
		c.styles.barEmpty.Render(strings.Repeat("-", progressWidth-filled)) +
		"] " + fmt.Sprintf("%.0f%%", percent)
}

// FormatClock renders seconds as mm:ss, or h:mm:ss from one hour up
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
