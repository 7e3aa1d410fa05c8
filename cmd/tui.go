package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Laisky/amc-site/cmd/tui"
	"github.com/Laisky/amc-site/library/config"
)

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "Launch the operator console",
	Long: `Launch an interactive console to start the API server,
check a settings file or run the portfolio migration.

Keyboard shortcuts:
  ↑/↓ or j/k  Navigate menu items
  Enter       Select / Confirm
  Tab         Next input field
  Esc         Go back
  q           Quit`,
	Args: gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
}

// runTUI shows the console and starts the server when the operator asks for it.
func runTUI(cmd *cobra.Command) error {
	flagConfig, _ := cmd.Flags().GetString("config")
	flagListen, _ := cmd.Flags().GetString("listen")

	p := tea.NewProgram(
		tui.NewModel(consoleRunner, flagConfig, flagListen),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return errors.WithStack(err)
	}

	model, ok := final.(tui.Model)
	if !ok {
		return nil
	}
	req, ok := model.Selected()
	if !ok {
		return nil
	}

	gconfig.Shared.Set("config", req.Config)
	gconfig.Shared.Set("listen", req.Listen)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := initialize(ctx, cmd); err != nil {
		return errors.Wrap(err, "init")
	}
	return runAPI(ctx)
}

// consoleRunner runs check and migrate requests without panicking on bad input.
func consoleRunner(req tui.Request) tui.Result {
	if err := config.Load(req.Config); err != nil {
		return tui.Result{Message: "cannot load settings", Details: err.Error()}
	}
	if err := validateStartupConfig(); err != nil {
		return tui.Result{Message: "invalid settings", Details: err.Error()}
	}
	if req.Action == tui.ActionCheck {
		return tui.Result{Success: true, Message: "settings are valid", Details: req.Config}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dryRun := req.Action == tui.ActionMigrateDry
	report, err := migratePortfolio(ctx, dryRun)
	if err != nil {
		return tui.Result{Message: "migration failed", Details: err.Error()}
	}

	verb := "migrated"
	if dryRun {
		verb = "would migrate"
	}
	return tui.Result{
		Success: true,
		Message: fmt.Sprintf("%s %d singletons and %d items", verb, len(report.MovedSingletons), len(report.FoldedItems)),
		Details: fmt.Sprintf("singletons: %s\nitems: %s",
			strings.Join(report.MovedSingletons, ", "),
			strings.Join(report.FoldedItems, ", ")),
	}
}
