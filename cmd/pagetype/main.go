// Package main provides the CLI entrypoint for pagetype.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/pagetype/internal/config"
	"github.com/verte-zerg/pagetype/internal/document"
	"github.com/verte-zerg/pagetype/internal/extract"
	"github.com/verte-zerg/pagetype/internal/logger"
	"github.com/verte-zerg/pagetype/internal/model"
	"github.com/verte-zerg/pagetype/internal/session"
	"github.com/verte-zerg/pagetype/internal/stats"
	"github.com/verte-zerg/pagetype/internal/store"
	"github.com/verte-zerg/pagetype/internal/tui"
)

const (
	defaultLogLevel      = "info"
	terminalWidthBackup  = 80
	noContentUserMessage = "No valid text found on this page"
)

var (
	logLevel   string
	logFile    string
	logConsole bool

	statsLast    int
	statsWindow  int
	statsHistory bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pagetype [page]",
		Short:         "Typing challenge over the visible text of a page",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runPlayCmd(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "also write logs to stderr")

	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <page>",
		Short: "Start a typing game over an HTML or text page",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlayCmd,
	}
}

func runPlayCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := openLogger(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeQuietly(log.Close)

	path := args[0]
	doc, err := document.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly(st.Close)

	recorder := store.NewRecorder(st, log.Logger)
	defer recorder.Close()

	m := tui.NewModel(doc, log.Logger,
		session.WithNotifier(recorder),
		session.WithSource(filepath.Base(path)),
	)
	if err := m.Start(); err != nil {
		if errors.Is(err, extract.ErrNoContent) {
			log.Warn().Str("source", path).Msg("page has no typeable text")
			return errors.New(noContentUserMessage)
		}
		return fmt.Errorf("failed to start game: %w", err)
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		m.Session().Stop()
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recent and overall averages",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N games")
	cmd.Flags().IntVar(&statsWindow, "window", stats.DefaultWindow, "number of games in the recent average")
	cmd.Flags().BoolVar(&statsHistory, "history", false, "list every game")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "window", &statsWindow, fileCfg.Stats.Window)
	if err := validateStatsFlags(statsLast, statsWindow); err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly(st.Close)

	cfg := model.StatsConfig{
		Last:    statsLast,
		Window:  statsWindow,
		History: statsHistory,
	}
	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Summary); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrend(out, report.Records, cfg.Window, terminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if cfg.History {
		if err := stats.RenderHistory(out, report.Records); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every recorded game",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := openLogger(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeQuietly(log.Close)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly(st.Close)

	if err := st.Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to reset stats: %w", err)
	}
	log.Info().Msg("statistics reset")
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Statistics have been reset"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openLogger(cmd *cobra.Command, fileCfg config.FileConfig) (*logger.Logger, error) {
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyBoolConfig(cmd, "log-console", &logConsole, fileCfg.Log.Console)
	log, err := logger.New(logger.Config{Level: logLevel, File: logFile, Console: logConsole})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return log, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateStatsFlags(last, window int) error {
	if last < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if window <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# pagetype configuration
# Uncomment a value to enable it. CLI flags override config values.

[stats]
# window = %d             # Games in the recent average

[log]
# level = %q          # debug, info, warn, error
# file = %q
# console = false       # Also write logs to stderr
`,
		stats.DefaultWindow,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func closeQuietly(closeFn func() error) {
	if err := closeFn(); err != nil {
		// Best-effort close.
		_ = err
	}
}
