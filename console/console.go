// Package console implements a small line-oriented shell for inspecting and
// setting a DS1307 over a serial port or a terminal.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/ajanata/softrtc/datetime"
	"github.com/ajanata/softrtc/ds1307"
)

var (
	ErrUnknownCommand = errors.New("console: unknown command")
	ErrUsage          = errors.New("console: bad arguments")
)

// RTC is the part of the DS1307 driver the shell drives.
type RTC interface {
	Now() (datetime.DateTime, error)
	SetTime(datetime.DateTime) error
	IsRunning() bool
	SetSquareWave(ds1307.SquareWave) error
	ReadRAM(offset uint8, buf []byte) error
	WriteRAM(offset uint8, buf []byte) error
}

type Config struct {
	// Logger receives per-line command failures. slog.Default() when nil.
	Logger *slog.Logger
}

type Shell struct {
	rtc    RTC
	out    io.Writer
	logger *slog.Logger
}

type command struct {
	usage string
	run   func(s *Shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"now":     {"now", (*Shell).now},
		"unix":    {"unix [seconds]", (*Shell).unix},
		"set":     {"set YYYY-MM-DD HH:MM:SS", (*Shell).set},
		"build":   {`build "Mmm DD YYYY" "HH:MM:SS"`, (*Shell).build},
		"running": {"running", (*Shell).running},
		"sqw":     {"sqw low|high|1hz|4096hz|8192hz|32768hz", (*Shell).sqw},
		"peek":    {"peek <offset> [count]", (*Shell).peek},
		"poke":    {"poke <offset> <byte>...", (*Shell).poke},
		"help":    {"help", (*Shell).help},
	}
}

var helpOrder = []string{"now", "unix", "set", "build", "running", "sqw", "peek", "poke", "help"}

var squareWaves = map[string]ds1307.SquareWave{
	"low":     ds1307.SQWLow,
	"high":    ds1307.SQWHigh,
	"1hz":     ds1307.SQW1Hz,
	"4096hz":  ds1307.SQW4096Hz,
	"8192hz":  ds1307.SQW8192Hz,
	"32768hz": ds1307.SQW32768Hz,
}

// New creates a shell that writes its output to out.
func New(rtc RTC, out io.Writer, cfg Config) *Shell {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Shell{
		rtc:    rtc,
		out:    out,
		logger: cfg.Logger,
	}
}

// Exec runs a single command line. Blank lines and lines starting with # do
// nothing.
func (s *Shell) Exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", line, err)
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return nil
	}
	return s.ExecArgs(args)
}

// ExecArgs runs a command that is already split into words, such as the
// arguments of a command line tool.
func (s *Shell) ExecArgs(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: empty command", ErrUnknownCommand)
	}
	cmd, ok := commands[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	if err := cmd.run(s, args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			return fmt.Errorf("%w, usage: %s", err, cmd.usage)
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

// Run executes every line read from r until EOF. A failing line is logged
// and reported on the output; it does not end the session.
func (s *Shell) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := s.Exec(sc.Text()); err != nil {
			s.logger.Error("console:command-failed", slog.String("line", sc.Text()), slog.Any("err", err))
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
	return sc.Err()
}

func (s *Shell) now(args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	dt, err := s.rtc.Now()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "%s %s\n", dt.Ddd(), dt)
	return err
}

func (s *Shell) unix(args []string) error {
	switch len(args) {
	case 0:
		dt, err := s.rtc.Now()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(s.out, dt.Unix())
		return err
	case 1:
		secs, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return ErrUsage
		}
		dt, err := datetime.FromUnix(int32(secs))
		if err != nil {
			return err
		}
		return s.setTime(dt)
	}
	return ErrUsage
}

func (s *Shell) set(args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	dt, err := datetime.ParseISO(args[0] + " " + args[1])
	if err != nil {
		return err
	}
	return s.setTime(dt)
}

func (s *Shell) build(args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	dt, err := datetime.Parse(args[0], args[1])
	if err != nil {
		return err
	}
	return s.setTime(dt)
}

func (s *Shell) setTime(dt datetime.DateTime) error {
	if err := s.rtc.SetTime(dt); err != nil {
		return err
	}
	s.logger.Info("console:time-set", slog.String("time", dt.String()))
	_, err := fmt.Fprintf(s.out, "set %s\n", dt)
	return err
}

func (s *Shell) running(args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	state := "halted"
	if s.rtc.IsRunning() {
		state = "running"
	}
	_, err := fmt.Fprintln(s.out, state)
	return err
}

func (s *Shell) sqw(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	mode, ok := squareWaves[strings.ToLower(args[0])]
	if !ok {
		return ErrUsage
	}
	return s.rtc.SetSquareWave(mode)
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, ErrUsage
	}
	return uint8(v), nil
}

func (s *Shell) peek(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	off, err := parseByte(args[0])
	if err != nil {
		return err
	}
	n := uint8(1)
	if len(args) == 2 {
		if n, err = parseByte(args[1]); err != nil {
			return err
		}
	}
	buf := make([]byte, n)
	if err := s.rtc.ReadRAM(off, buf); err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "% x\n", buf)
	return err
}

func (s *Shell) poke(args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	off, err := parseByte(args[0])
	if err != nil {
		return err
	}
	buf := make([]byte, len(args)-1)
	for i, a := range args[1:] {
		if buf[i], err = parseByte(a); err != nil {
			return err
		}
	}
	return s.rtc.WriteRAM(off, buf)
}

func (s *Shell) help(args []string) error {
	for _, name := range helpOrder {
		if _, err := fmt.Fprintln(s.out, commands[name].usage); err != nil {
			return err
		}
	}
	return nil
}
