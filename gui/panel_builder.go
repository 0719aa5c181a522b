package gui

import "go.uber.org/zap"

// PanelBuilderOption is a functional option applied to a panel by NewPanel.
type PanelBuilderOption func(*panel)

// WithLogger sets the logger that reports controls which could not be bound.
func WithLogger(l *zap.Logger) PanelBuilderOption {
	return func(p *panel) {
		p.log = l
	}
}
