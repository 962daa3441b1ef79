package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/datatable/internal/ledger"
)

func (a *App) loadCounts() tea.Cmd {
	return func() tea.Msg {
		total, uncategorized, err := a.repos.Transactions.Counts(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return countsMsg{total: total, uncategorized: uncategorized}
	}
}

func (a *App) waitForWatch() tea.Cmd {
	ch := a.watch
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return watchMsg(ev)
	}
}

func (a *App) deleteCmd(tx ledger.Transaction) tea.Cmd {
	return func() tea.Msg {
		if err := a.repos.Transactions.Delete(a.ctx, tx.ID); err != nil {
			return errMsg{fmt.Errorf("delete %s: %w", tx.ID, err)}
		}
		return statusMsg("deleted " + tx.Description())
	}
}

func (a *App) toggleFlagCmd(tx ledger.Transaction) tea.Cmd {
	return func() tea.Msg {
		if a.repos.Tags == nil {
			return errMsg{fmt.Errorf("tags repo not configured")}
		}
		for _, t := range tx.Tags {
			if strings.EqualFold(t.Name, FlagTag) {
				if err := a.repos.Transactions.RemoveTag(a.ctx, tx.ID, t.ID); err != nil {
					return errMsg{err}
				}
				return statusMsg("unflagged " + tx.Description())
			}
		}
		tag, err := a.repos.Tags.Ensure(a.ctx, FlagTag)
		if err != nil {
			return errMsg{err}
		}
		if err := a.repos.Transactions.AttachTag(a.ctx, tx.ID, tag.ID); err != nil {
			return errMsg{err}
		}
		return statusMsg("flagged " + tx.Description())
	}
}

// nextStatus cycles pending -> posted -> reconciled -> pending.
func nextStatus(s string) string {
	switch s {
	case "pending":
		return "posted"
	case "posted":
		return "reconciled"
	default:
		return "pending"
	}
}

func (a *App) cycleStatusCmd(tx ledger.Transaction) tea.Cmd {
	return func() tea.Msg {
		next := nextStatus(tx.Status)
		if err := a.repos.Transactions.UpdateStatus(a.ctx, tx.ID, next); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("%s is now %s", tx.Description(), next))
	}
}

func (a *App) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.svc.Maintenance.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg("database reset (empty) - import or seed transactions")
	}
}
