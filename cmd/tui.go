package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for the tracked library.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureEngine(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/trax-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
