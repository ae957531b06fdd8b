package app

import "github.com/vzahradnik/garden/internal/ui"

func (m Model) View() string {
	if !m.ready {
		return ""
	}

	// Row 0 is the status line: help while paused or before the first
	// base tick, score/steps plus the fired rule's header otherwise.
	var status string
	if m.elapsed_b == 0 || m.paused {
		status = ui.RenderHelp(m.width, m.g.Help)
	} else {
		header := ""
		if m.fired != nil {
			header = m.fired.Header
		}
		status = ui.RenderStatus(m.width, m.score, m.steps, header)
	}

	return status + "\n" + m.grid.Render()
}
