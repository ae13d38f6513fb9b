package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/powertrim/powertrim/internal/audit"
	"github.com/powertrim/powertrim/internal/drift"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
)

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 90:
		return goodStyle
	case score >= 60:
		return warnStyle
	default:
		return badStyle
	}
}

func severityStyle(s audit.Severity) lipgloss.Style {
	switch s {
	case audit.SeverityHigh:
		return badStyle
	case audit.SeverityMed:
		return warnStyle
	default:
		return mutedStyle
	}
}

func failCountStyle(failed int) lipgloss.Style {
	if failed > 0 {
		return badStyle
	}
	return goodStyle
}

func driftStyle(status drift.Status) lipgloss.Style {
	switch status {
	case drift.StatusActive:
		return goodStyle
	case drift.StatusDrifted:
		return badStyle
	case drift.StatusPendingReboot:
		return pendingStyle
	default:
		return mutedStyle
	}
}
