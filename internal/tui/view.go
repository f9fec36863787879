package tui

import (
	"fmt"
	"strings"

	"task_backend/internal/api"
	"task_backend/internal/client/state"
)

// View は現在の画面をStoreのスナップショットから描画します。
func (m Model) View() string {
	snap := m.store.Snapshot()

	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewAuth("Login", m.login, "enter: sign in • tab: next field • ctrl+r: register • esc: quit")
	case screenRegister:
		body = m.viewAuth("Register", m.register, "enter: create account • tab: next field • ctrl+r: login • esc: quit")
	case screenList:
		body = m.viewList(snap)
	case screenDetail:
		body = m.viewDetail(snap)
	case screenDashboard:
		body = viewDashboard(snap)
	case screenCreate:
		body = titleStyle.Render("New task") + "\n\n" + m.create.view() + "\n" +
			helpStyle.Render("enter: create • tab: next field • esc: cancel")
	}

	var b strings.Builder
	b.WriteString(body)
	if snap.Loading {
		b.WriteString("\n\nLoading...")
	}
	if msg := m.errorMessage(snap); msg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + msg))
	}
	return appStyle.Render(b.String())
}

func (m Model) errorMessage(snap state.State) string {
	if m.localErr != "" {
		return m.localErr
	}
	return snap.Error
}

func (m Model) viewAuth(title string, f form, help string) string {
	return titleStyle.Render(title) + "\n\n" + f.view() + "\n" + helpStyle.Render(help)
}

func (m Model) viewList(snap state.State) string {
	var b strings.Builder
	header := "Tasks"
	if snap.User != nil {
		header = fmt.Sprintf("Tasks of %s", snap.User.Name)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if len(snap.Tasks) == 0 {
		b.WriteString("No tasks yet. Press n to create one.\n")
	}
	for i, t := range snap.Tasks {
		line := fmt.Sprintf("%s %-30s %-8s due %s", statusMarker(t.Status), truncate(t.Title, 30),
			renderPriority(t.Priority), t.DueDate.Format("2006-01-02"))
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: move • enter: details • n: new • s: next status • d: delete • g: dashboard • r: refresh • o: logout • q: quit"))
	return b.String()
}

func (m Model) viewDetail(snap state.State) string {
	t, ok := m.current(snap)
	if !ok {
		return "Task not found.\n\n" + helpStyle.Render("esc: back")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString("\n\n")
	b.WriteString(t.Description)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Status:   %s %s\n", statusMarker(t.Status), t.Status)
	fmt.Fprintf(&b, "Priority: %s\n", renderPriority(t.Priority))
	fmt.Fprintf(&b, "Due:      %s\n", t.DueDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	if t.AISuggestion != "" {
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(titleStyle.Render("AI suggestion") + "\n" + suggestStyle.Render(t.AISuggestion)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("s: next status • d: delete • esc: back"))
	return b.String()
}

func viewDashboard(snap state.State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard"))
	b.WriteString("\n\n")
	if snap.Stats == nil {
		b.WriteString("No statistics loaded.\n")
	} else {
		s := snap.Stats.Stats
		fmt.Fprintf(&b, "Total: %d  Completed: %d  Pending: %d  In progress: %d  High priority: %d\n\n",
			s.Total, s.Completed, s.Pending, s.InProgress, s.HighPriority)
		b.WriteString(boxStyle.Render("By priority\n" + renderGroups(snap.Stats.PriorityBreakdown)))
		b.WriteString("\n")
		b.WriteString(boxStyle.Render("By status\n" + renderGroups(snap.Stats.StatusBreakdown)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("esc: back • r: refresh • q: quit"))
	return b.String()
}

func renderGroups(groups []api.GroupCount) string {
	if len(groups) == 0 {
		return "  -"
	}
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, fmt.Sprintf("  %-12s %d", g.ID, g.Count))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
