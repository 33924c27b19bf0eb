// Package console owns synchronized, color-capable access to the process's
// standard streams. It is constructed once at startup, before any command
// logic runs, and handles the platform-specific console setup (ANSI escape
// translation on Windows) so nothing else has to.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"gopkg.in/yaml.v3"
)

// Console enables synced writing to stdout and stderr.
type Console struct {
	IsTTY          bool
	Stdout, Stderr OSFileW
	Stdin          OSFileR

	outMx        *sync.Mutex
	theme        *theme
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
	logger       *logrus.Logger
}

// New returns the pointer to a new Console value.
func New(
	stdout, stderr OSFileW, stdin OSFileR,
	colorize bool, termType string,
	signalNotify func(chan<- os.Signal, ...os.Signal),
	signalStop func(chan<- os.Signal),
) *Console {
	outMx := &sync.Mutex{}
	outCW := newConsoleWriter(stdout, outMx, termType)
	errCW := newConsoleWriter(stderr, outMx, termType)
	isTTY := outCW.isTTY && errCW.isTTY

	// Default logger without any formatting
	logger := &logrus.Logger{
		Out:       errCW,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}

	var th *theme
	// Only enable themes and a fancy logger if we're in a TTY
	if isTTY && colorize {
		th = &theme{foreground: newColor(color.FgCyan)}

		logger = &logrus.Logger{
			Out: errCW,
			Formatter: &logrus.TextFormatter{
				ForceColors:   true,
				DisableColors: false,
			},
			Hooks: make(logrus.LevelHooks),
			Level: logrus.InfoLevel,
		}
	}

	return &Console{
		IsTTY:        isTTY,
		Stdout:       outCW,
		Stderr:       errCW,
		Stdin:        stdin,
		outMx:        outMx,
		theme:        th,
		signalNotify: signalNotify,
		signalStop:   signalStop,
		logger:       logger,
	}
}

// ApplyTheme adds ANSI color escape sequences to s if themes are enabled;
// otherwise it returns s unchanged.
func (c *Console) ApplyTheme(s string) string {
	if c.colorized() {
		return c.theme.foreground.Sprint(s)
	}

	return s
}

// Banner returns the camoufox ASCII art banner, optionally with ANSI color
// escape sequences if themes are enabled.
func (c *Console) Banner() string {
	banner := strings.Join([]string{
		`                                  __`,
		"  ___ __ _ _ __ ___   ___  _   _ / _| _____  __",
		" / __/ _` | '_ ` _ \\ / _ \\| | | | |_ / _ \\ \\/ /",
		`| (_| (_| | | | | | | (_) | |_| |  _| (_) >  <`,
		` \___\__,_|_| |_| |_|\___/ \__,_|_|  \___/_/\_\`,
	}, "\n")

	return c.ApplyTheme(banner)
}

// GetLogger returns the preconfigured plain-text logger. It will be configured
// to output colors if themes are enabled.
func (c *Console) GetLogger() *logrus.Logger {
	return c.logger
}

// SetLogger overrides the preconfigured logger.
func (c *Console) SetLogger(l *logrus.Logger) {
	c.logger = l
}

// Print writes s to stdout.
func (c *Console) Print(s string) {
	if _, err := fmt.Fprint(c.Stdout, s); err != nil {
		c.logger.Errorf("could not print '%s' to stdout: %s", s, err.Error())
	}
}

// Printf writes s to stdout, formatted with optional arguments.
func (c *Console) Printf(s string, a ...interface{}) {
	if _, err := fmt.Fprintf(c.Stdout, s, a...); err != nil {
		c.logger.Errorf("could not print '%s' to stdout: %s", s, err.Error())
	}
}

// PrintYAML marshals v to YAML, and writes the result to stdout. It returns an
// error if marshalling fails.
func (c *Console) PrintYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not marshal YAML: %w", err)
	}
	c.Print(string(data))
	return nil
}

// TermWidth returns the terminal window width in characters. If the window size
// lookup fails, or if we're not running in a TTY (interactive terminal), the
// default value of 80 will be returned. err will be non-nil if the lookup fails.
func (c *Console) TermWidth() (int, error) {
	if !c.IsTTY {
		return defaultTermWidth, nil
	}

	width, _, err := term.GetSize(int(c.Stdout.Fd()))
	if !(width > 0) || err != nil {
		return defaultTermWidth, err
	}

	return width, nil
}

func (c *Console) colorized() bool {
	return c.theme != nil
}

// OSFile is a subset of the functionality implemented by os.File.
type OSFile interface {
	Fd() uintptr
}

// OSFileW is the writer variant of OSFile, typically representing os.Stdout and
// os.Stderr.
type OSFileW interface {
	io.Writer
	OSFile
}

// OSFileR is the reader variant of OSFile, typically representing os.Stdin.
type OSFileR interface {
	io.Reader
	OSFile
}

// theme is a collection of colors supported by the console output.
type theme struct {
	foreground *color.Color
}

// A writer that syncs writes across stdout/stderr with a shared mutex. When
// the underlying stream is a real console file, writes are routed through an
// ANSI-aware wrapper, which on Windows translates escape sequences via the
// console API before anything else gets to run.
type consoleWriter struct {
	out   io.Writer
	file  OSFileW
	isTTY bool
	mutex *sync.Mutex
}

func newConsoleWriter(out OSFileW, mx *sync.Mutex, termType string) *consoleWriter {
	isTTY := termType != "dumb" && (isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()))

	w := io.Writer(out)
	if f, ok := out.(*os.File); ok {
		w = colorable.NewColorable(f)
	}

	return &consoleWriter{w, out, isTTY, mx}
}

func (w *consoleWriter) Write(p []byte) (n int, err error) {
	w.mutex.Lock()
	n, err = w.out.Write(p)
	w.mutex.Unlock()

	return n, err
}

// Fd returns the file descriptor of the original stream, so TTY probes keep
// working through the wrapper.
func (w *consoleWriter) Fd() uintptr {
	return w.file.Fd()
}

// newColor returns the requested color with the given attributes.
func newColor(attributes ...color.Attribute) *color.Color {
	c := color.New(attributes...)
	c.EnableColor()
	return c
}
