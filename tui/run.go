package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"ghexplorer/search"
)

// Run shows the search view until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl *search.Controller) error {
	updates := make(chan search.State, 1)
	unsubscribe := ctrl.Subscribe(func(st search.State) { latest(updates, st) })
	defer unsubscribe()

	p := tea.NewProgram(New(ctrl, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	ctrl.Start()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

// latest puts st into ch, replacing an unread older state. It never blocks.
func latest(ch chan search.State, st search.State) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
