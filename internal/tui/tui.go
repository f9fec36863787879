package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"task_backend/internal/client/state"
)

// Run はターミナルUIを起動し、ユーザーが終了するまでブロックします。
func Run(ctx context.Context, store *state.Store) error {
	_, err := tea.NewProgram(New(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
