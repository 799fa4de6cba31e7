// Package interactive provides the interactive command-line interface
// for displayctl.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"github.com/displayctl/displayctl-go/pkg/control"
	"github.com/displayctl/displayctl-go/pkg/inputsource"
	"github.com/displayctl/displayctl-go/pkg/levelrange"
	"github.com/displayctl/displayctl-go/pkg/monitor"
	"github.com/displayctl/displayctl-go/pkg/rescan"
	"github.com/displayctl/displayctl-go/pkg/simulate"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Shell handles interactive mode for displayctl.
type Shell struct {
	registry *control.Registry
	fleet    *simulate.Fleet
	worker   *rescan.Worker
	rl       *readline.Instance

	unsubscribe func()
}

// New creates a new interactive shell.
func New(registry *control.Registry, fleet *simulate.Fleet, worker *rescan.Worker) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "displayctl> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := &Shell{
		registry: registry,
		fleet:    fleet,
		worker:   worker,
		rl:       rl,
	}
	s.unsubscribe = registry.Subscribe(s.handleEvent)
	return s, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer s.unsubscribe()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		if cmd == "quit" || cmd == "exit" || cmd == "q" {
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}
		if err := s.Exec(cmd, parts[1:]); err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		}
	}
}

// Exec runs one command.
func (s *Shell) Exec(cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		s.printHelp()
		return nil
	case "list", "ls":
		s.cmdList()
		return nil
	case "show":
		return s.cmdShow(args)
	case "brightness", "b":
		return s.cmdBrightness(args)
	case "contrast", "c":
		return s.cmdContrast(args)
	case "input", "in":
		return s.cmdInput(args)
	case "range":
		return s.cmdRange(args)
	case "name":
		return s.cmdName(args)
	case "unison":
		return s.cmdUnison(args)
	case "fail":
		return s.cmdFail(args)
	case "recover":
		return s.cmdRecover(args)
	case "unplug", "plug":
		return s.cmdPlug(cmd == "plug", args)
	case "replace":
		return s.cmdReplace(args)
	case "rescan":
		s.worker.Trigger()
		fmt.Fprintln(s.rl.Stdout(), "Rescan requested")
		return nil
	case "stats":
		s.cmdStats()
		return nil
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
displayctl Commands:
  Monitors (<m> is a list number or device instance ID):
    list                    - List monitors
    show <m>                - Show monitor details
    brightness <m> [v|up|down] - Read, set or step brightness
    contrast <m> [v]        - Read or set contrast
    input <m> [on|off|code] - Read input source, toggle switching, or select a source
    range <m> <low> <high>  - Set the brightness range
    name <m> [text]         - Set or reset the display name
    unison <m> on|off       - Toggle unison mode

  Simulation:
    fail <m> <status> [n]   - Fail the next n accesses (default 1)
    recover <m>             - Clear injected failures
    unplug <m> / plug <m>   - Remove or reconnect a monitor
    replace <m> [unreachable] - Hand the session a fresh handle

  Diagnostics:
    rescan                  - Request a monitor rescan
    stats                   - Show access and rescan statistics

  Other:
    help                    - Show this help
    quit                    - Exit`)
}

// resolve finds a session by 1-based list position or device instance ID.
func (s *Shell) resolve(args []string) (*control.Session, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing monitor")
	}
	if n, err := strconv.Atoi(args[0]); err == nil {
		sessions := s.registry.Sessions()
		if n < 1 || n > len(sessions) {
			return nil, fmt.Errorf("no monitor #%d", n)
		}
		return sessions[n-1], nil
	}
	session, ok := s.registry.Get(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s", control.ErrUnknownMonitor, args[0])
	}
	return session, nil
}

func controllable(session *control.Session) string {
	if session.Controllable() {
		return okStyle.Render("yes")
	}
	return badStyle.Render("no (" + session.Reason().String() + ")")
}

func (s *Shell) cmdList() {
	out := s.rl.Stdout()
	sessions := s.registry.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No monitors"))
		return
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-3s %-24s %-22s %-10s %s", "#", "NAME", "KIND", "BRIGHTNESS", "CONTROLLABLE")))
	for i, session := range sessions {
		fmt.Fprintf(out, "%-3d %-24s %-22s %-10s %s\n",
			i+1, session.Name(), session.Kind(),
			fmt.Sprintf("%d%%", session.BrightnessPercentage()),
			controllable(session))
	}
}

func (s *Shell) cmdShow(args []string) error {
	session, err := s.resolve(args)
	if err != nil {
		return err
	}
	out := s.rl.Stdout()
	id := session.Identity()
	conf := session.Confidence()

	fmt.Fprintln(out, headerStyle.Render(session.Name()))
	fmt.Fprintf(out, "  Device:       %s\n", id.DeviceInstanceID)
	fmt.Fprintf(out, "  Description:  %s\n", id.Description)
	fmt.Fprintf(out, "  Position:     display %d, monitor %d\n", id.DisplayIndex, id.MonitorIndex)
	fmt.Fprintf(out, "  Kind:         %s\n", session.Kind())
	fmt.Fprintf(out, "  Controllable: %s\n", controllable(session))
	fmt.Fprintf(out, "  Confidence:   %d (confirmed: %t)\n", conf.Count, conf.Confirmed)
	fmt.Fprintf(out, "  Brightness:   %d (%d%% of %s)\n", session.Brightness(), session.BrightnessPercentage(), session.Range())
	if session.IsContrastSupported() {
		fmt.Fprintf(out, "  Contrast:     %d\n", session.Contrast())
	}
	if session.IsInputSourceSupported() {
		fmt.Fprintf(out, "  Input source: %s\n", inputsource.NewItem(byte(session.InputSource())))
		if session.IsInputSourceSwitching() {
			selected, _ := session.SelectedSource()
			for _, item := range session.InputSources() {
				marker := " "
				if item == selected {
					marker = "*"
				}
				fmt.Fprintf(out, "    %s 0x%02X %s\n", marker, item.ID, item)
			}
		}
	}
	fmt.Fprintf(out, "  Unison:       %t\n", session.IsUnison())
	fmt.Fprintf(out, "  Session:      %s\n", dimStyle.Render(session.ID()))
	return nil
}

func (s *Shell) cmdBrightness(args []string) error {
	session, err := s.resolve(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		if err := session.UpdateBrightness(-1); err != nil {
			return err
		}
	} else {
		switch strings.ToLower(args[1]) {
		case "up", "+":
			err = session.StepBrightness(true)
		case "down", "-":
			err = session.StepBrightness(false)
		default:
			v, perr := strconv.Atoi(args[1])
			if perr != nil {
				return fmt.Errorf("invalid brightness %q", args[1])
			}
			err = session.SetBrightness(v)
		}
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(s.rl.Stdout(), "%s: brightness %d (%d%%)\n", session.Name(), session.Brightness(), session.BrightnessPercentage())
	return nil
}

func (s *Shell) cmdContrast(args []string) error {
	session, err := s.resolve(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		err = session.UpdateContrast()
	} else {
		v, perr := strconv.Atoi(args[1])
		if perr != nil {
			return fmt.Errorf("invalid contrast %q", args[1])
		}
		err = session.SetContrast(v)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.rl.Stdout(), "%s: contrast %d\n", session.Name(), session.Contrast())
	return nil
}

// parseCode accepts decimal or 0x-prefixed hex input source codes.
func parseCode(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid input source %q", s)
	}
	return byte(v), nil
}

func (s *Shell) cmdInput(args []string) error {
	session, err := s.resolve(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		err = session.UpdateInputSource()
	} else {
		switch strings.ToLower(args[1]) {
		case "on":
			err = session.SetInputSourceSwitching(true)
		case "off":
			err = session.SetInputSourceSwitching(false)
		default:
			code, perr := parseCode(args[1])
			if perr != nil {
				return perr
			}
			err = session.SelectSource(inputsource.NewItem(code))
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.rl.Stdout(), "%s: input source %s\n", session.Name(), inputsource.NewItem(byte(session.InputSource())))
	return nil
}

func (s *Shell) cmdRange(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: range <m> <low> <high>")
	}
	session, err := s.resolve(args)
	if err != nil {
		return err
	}
	lo, err1 := strconv.Atoi(args[1])
	hi, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		return fmt.Errorf("invalid range %s..%s", args[1], args[2])
	}
	r, err := levelrange.New(lo, hi)
	if err != nil {
		return err
	}
	return session.SetRange(r)
}

func (s *Shell) cmdName(args []string) error {
	session, err := s.resolve(args)
	if err != nil {
		return err
	}
	return session.SetName(strings.Join(args[1:], " "))
}

func (s *Shell) cmdUnison(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: unison <m> on|off")
	}
	session, err := s.resolve(args)
	if err != nil {
		return err
	}
	return session.SetUnison(strings.EqualFold(args[1], "on"))
}

// handle returns the simulated monitor currently behind a session.
func (s *Shell) handle(args []string) (*control.Session, *simulate.Monitor, error) {
	session, err := s.resolve(args)
	if err != nil {
		return nil, nil, err
	}
	m, ok := s.fleet.Monitor(session.DeviceInstanceID())
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", simulate.ErrUnknownMonitor, session.DeviceInstanceID())
	}
	return session, m, nil
}

func (s *Shell) cmdFail(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: fail <m> <status> [n]")
	}
	session, m, err := s.handle(args)
	if err != nil {
		return err
	}
	status, err := monitor.ParseAccessStatus(args[1])
	if err != nil {
		return err
	}
	n := 1
	if len(args) > 2 {
		if n, err = strconv.Atoi(args[2]); err != nil || n < 1 {
			return fmt.Errorf("invalid count %q", args[2])
		}
	}
	m.FailNext(status, n)
	fmt.Fprintf(s.rl.Stdout(), "%s: next %d access(es) fail with %s\n", session.Name(), n, status)
	return nil
}

func (s *Shell) cmdRecover(args []string) error {
	_, m, err := s.handle(args)
	if err != nil {
		return err
	}
	m.Recover()
	return nil
}

func (s *Shell) cmdPlug(present bool, args []string) error {
	session, err := s.resolve(args)
	if err != nil {
		return err
	}
	return s.fleet.SetPresent(session.DeviceInstanceID(), present)
}

func (s *Shell) cmdReplace(args []string) error {
	session, err := s.resolve(args)
	if err != nil {
		return err
	}
	reachable := len(args) < 2 || !strings.EqualFold(args[1], "unreachable")
	h, err := s.fleet.Reopen(session.DeviceInstanceID(), reachable)
	if err != nil {
		return err
	}
	replaced, err := s.registry.Replace(session.DeviceInstanceID(), h)
	if err != nil {
		return err
	}
	if replaced {
		fmt.Fprintf(s.rl.Stdout(), "%s: handle replaced\n", session.Name())
	} else {
		fmt.Fprintf(s.rl.Stdout(), "%s: replacement rejected\n", session.Name())
	}
	return nil
}

func (s *Shell) cmdStats() {
	out := s.rl.Stdout()
	failures, rescans := s.registry.Stats()
	requests, scans, scanFailures := s.worker.Stats()
	fmt.Fprintf(out, "Access failures:   %d\n", failures)
	fmt.Fprintf(out, "Rescan requests:   %d (registry) / %d (worker)\n", rescans, requests)
	fmt.Fprintf(out, "Scans:             %d (%d failed)\n", scans, scanFailures)
	fmt.Fprintf(out, "Worker state:      %s\n", s.worker.State())
	if req, ok := s.worker.LastRequest(); ok {
		fmt.Fprintf(out, "Last request:      %s %s (%s)\n", req.DeviceInstanceID, req.Attribute, req.Status)
	}
}

func (s *Shell) handleEvent(e control.Event) {
	fmt.Fprintf(s.rl.Stdout(), "%s %s\n", dimStyle.Render("[EVENT]"), e)
}
