package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"go.uber.org/zap"
)

func Start(logger *zap.Logger, title string, items []ditem.Item) error {
	logger.Debug(
		"starting browser",
		zap.String("title", title),
		zap.Int("items", ditem.CountAll(items)),
	)
	browser := NewBrowser(title, items)
	if err := tea.NewProgram(browser, tea.WithAltScreen()).Start(); err != nil {
		err := errors.Wrap(err, "ui.Start error")
		return err
	}
	return nil
}
