package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/miosa/osa-view/app"
	"github.com/miosa/osa-view/client"
	"github.com/miosa/osa-view/config"
	"github.com/miosa/osa-view/logging"
	"github.com/miosa/osa-view/markdown"
	"github.com/miosa/osa-view/style"
	"github.com/miosa/osa-view/ui/grid"
)

var version = "dev"

// flags holds the command line settings.
type flags struct {
	Table   bool
	Follow  bool
	Watch   string
	Theme   string
	Profile string
	Debug   bool
	LogFile string
	NoColor bool
}

func main() {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "osa-view [flags] [file|-|url]",
		Short: "Scroll through huge logs and status grids in the terminal",
		Long: `osa-view renders large ANSI logs and JSON status tables. Content over
a few hundred lines or rows is windowed so only what is on screen is built.`,
		Example: `  # Page through a build log
  osa-view build.log

  # Follow a running job
  make test 2>&1 | osa-view --follow

  # Show a status grid and keep it live
  osa-view https://ci.example.com/jobs.json --watch https://ci.example.com/jobs/events`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, args)
		},
	}

	rootCmd.Flags().BoolVarP(&f.Table, "table", "t", false, "Treat input as a JSON table")
	rootCmd.Flags().BoolVarP(&f.Follow, "follow", "f", false, "Stream input and stick to the tail")
	rootCmd.Flags().StringVarP(&f.Watch, "watch", "w", "", "Event stream URL pushing table refreshes")
	rootCmd.Flags().StringVar(&f.Theme, "theme", "", "Color theme ("+strings.Join(style.ThemeNames, ", ")+", auto)")
	rootCmd.Flags().StringVar(&f.Profile, "profile", "", "Named profile for state isolation (~/.osa/profiles/<name>)")
	rootCmd.Flags().BoolVarP(&f.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&f.LogFile, "log-file", "", "Log file path (default ~/.osa/view.log)")
	rootCmd.Flags().BoolVar(&f.NoColor, "no-color", false, "Disable ANSI colors")

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion(version),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			_, _ = fmt.Fprintf(w, "osa-view: %v\n", err)
		}),
	); err != nil {
		os.Exit(1)
	}
}

func profileDir(profile string) string {
	home, _ := os.UserHomeDir()
	if profile != "" {
		return filepath.Join(home, ".osa", "profiles", profile)
	}
	return filepath.Join(home, ".osa")
}

func readToken(dir string) string {
	if token := os.Getenv("OSA_TOKEN"); token != "" {
		return token
	}
	data, err := os.ReadFile(filepath.Join(dir, "token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func run(ctx context.Context, f flags, args []string) error {
	dir := profileDir(f.Profile)
	cfg := config.Load(dir)

	closer, err := logging.Setup(cmp.Or(f.LogFile, cfg.LogFile, logging.DefaultPath()), f.Debug)
	if err != nil {
		return err
	}
	defer closer.Close()

	if f.NoColor {
		// lipgloss honours NO_COLOR when it detects the color profile
		os.Setenv("NO_COLOR", "1")
	}

	theme := cmp.Or(f.Theme, cfg.Theme, "auto")
	if theme == "auto" {
		theme = style.AutoTheme(lipgloss.HasDarkBackground(os.Stdin, os.Stdout))
	}
	if !style.SetTheme(theme) {
		return fmt.Errorf("unknown theme %q (available: %s)", theme, strings.Join(style.ThemeNames, ", "))
	}

	md := markdown.New(cfg.Markdown.Enabled, cfg.Markdown.Style)
	if g, ok := md.(*markdown.Glamour); ok {
		g.Wrap = cfg.Markdown.WordWrap
	}

	c := client.New()
	if token := readToken(dir); token != "" {
		c.SetToken(token)
	}

	opts := []app.Option{
		app.WithConfig(cfg),
		app.WithMarkdown(md),
		app.WithPolicy(grid.DefaultPolicy(grid.Thresholds{
			Fast:   cfg.Durations.Fast(),
			Medium: cfg.Durations.Medium(),
		})),
	}

	src := "-"
	if len(args) == 1 {
		src = args[0]
	}
	sourceOpts, cleanup, err := sourceOptions(c, src, f)
	if err != nil {
		return err
	}
	defer cleanup()
	opts = append(opts, sourceOpts...)

	if f.Watch != "" {
		w := client.NewWatcher(c, f.Watch)
		defer w.Close()
		opts = append(opts, app.WithWatcher(w))
	}

	slog.Info("starting", "version", version, "source", src, "theme", theme, "profile", f.Profile)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if !isTerminal(os.Stdin) {
		// stdin carries content, so keys come from the controlling terminal
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		defer tty.Close()
		progOpts = append(progOpts, tea.WithInput(tty))
	}

	m := app.New(opts...)
	p := tea.NewProgram(m, progOpts...)
	go func() {
		p.Send(app.ProgramReady{Program: p})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// sourceOptions picks how content reaches the model: stdin, a URL or a file,
// each either loaded once or followed.
func sourceOptions(c *client.Client, src string, f flags) ([]app.Option, func(), error) {
	noop := func() {}
	switch {
	case src == "-":
		if isTerminal(os.Stdin) && f.Watch == "" {
			return nil, noop, fmt.Errorf("nothing to show: pass a file or URL, or pipe input")
		}
		if isTerminal(os.Stdin) {
			// only the watch feed supplies content
			return []app.Option{app.WithSource(f.Watch)}, noop, nil
		}
		if f.Follow {
			return []app.Option{app.WithSource("stdin"), app.WithFollow(os.Stdin)}, noop, nil
		}
		return []app.Option{
			app.WithSource("stdin"),
			app.WithLoader(app.LoadReaderCmd("stdin", os.Stdin, f.Table)),
		}, noop, nil

	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		return []app.Option{app.WithSource(src), app.WithFetch(c, src, f.Table)}, noop, nil

	case f.Follow:
		file, err := os.Open(src)
		if err != nil {
			return nil, noop, fmt.Errorf("open %s: %w", src, err)
		}
		return []app.Option{app.WithSource(src), app.WithFollow(file)}, func() { file.Close() }, nil

	default:
		return []app.Option{app.WithSource(src), app.WithLoader(app.LoadFileCmd(src, f.Table))}, noop, nil
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
