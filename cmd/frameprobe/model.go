package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/decker502/marejadas/pkg/frames"
)

const barWidth = 40

type progressMsg frames.Progress

type doneMsg struct {
	result probeResult
	err    error
}

// probeModel bubbletea 进度界面
type probeModel struct {
	name     string
	total    int
	progress frames.Progress
	cancel   func()

	done    bool
	aborted bool
	result  probeResult
	err     error
}

func newProbeModel(name string, total int, cancel func()) probeModel {
	return probeModel{
		name:     name,
		total:    total,
		cancel:   cancel,
		progress: frames.Progress{Total: total},
	}
}

func (m probeModel) Init() tea.Cmd {
	return nil
}

func (m probeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case progressMsg:
		m.progress = frames.Progress(msg)
	case doneMsg:
		m.done = true
		m.result = msg.result
		m.result.Dataset = m.name
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m probeModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Precargando %s\n\n", m.name)
	fmt.Fprintf(&b, "%s %3d%%\n", renderBar(m.progress.Percent, barWidth), m.progress.Percent)
	fmt.Fprintf(&b, "frames %d/%d  batch %d/%d  failed %d\n",
		m.progress.Completed, m.total, m.progress.Batch, m.progress.Batches, m.progress.Failed)
	if !m.done && !m.aborted {
		b.WriteString("\nq: abort\n")
	}
	return b.String()
}
