// Package form is the interactive input collector: one bounded text input
// per lab-test quantity plus a soil class selector, with prediction on enter.
package form

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/aceteam-ai/modulus-cli/internal/predict"
	"github.com/aceteam-ai/modulus-cli/internal/soil"
	"github.com/aceteam-ai/modulus-cli/internal/tui"
)

// Runner executes a prediction for a captured snapshot.
type Runner interface {
	Variant() soil.Variant
	Run(ctx context.Context, snap soil.Snapshot) (*predict.Result, error)
}

type row struct {
	field   soil.Field
	isClass bool
	input   textinput.Model
	value   float64
}

// Model is the BubbleTea model for a prediction form
type Model struct {
	ctx      context.Context
	runner   Runner
	variant  soil.Variant
	rows     []row
	classIdx int
	focus    int
	labelW   int

	result   *predict.Result
	errMsg   string
	errHint  string
	attempts int
	quitting bool
}

// New builds a form for the runner's variant, filled with field defaults.
func New(ctx context.Context, r Runner) Model {
	v := r.Variant()
	m := Model{ctx: ctx, runner: r, variant: v}

	for _, col := range v.Columns {
		if col == soil.ColumnSoilClass {
			m.rows = append(m.rows, row{isClass: true})
			m.labelW = max(m.labelW, runewidth.StringWidth("AASHTO Soil Class"))
			continue
		}
		f, ok := v.FieldForColumn(col)
		if !ok {
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 24
		ti.Width = 16
		m.rows = append(m.rows, row{field: f, input: ti})
		m.labelW = max(m.labelW, runewidth.StringWidth(f.DisplayLabel()))
	}
	m.reset()
	m.setFocus(0)
	return m
}

// reset restores every field default and the first class option.
func (m *Model) reset() {
	for i := range m.rows {
		if m.rows[i].isClass {
			continue
		}
		m.rows[i].value = m.rows[i].field.Default
		m.rows[i].input.SetValue(m.rows[i].field.FormatValue(m.rows[i].value))
	}
	m.classIdx = 0
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if len(m.rows) > 0 && !m.rows[m.focus].isClass {
			var cmd tea.Cmd
			m.rows[m.focus].input, cmd = m.rows[m.focus].input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "down":
		m.commit(m.focus)
		m.setFocus((m.focus + 1) % len(m.rows))
		return m, nil

	case "shift+tab", "up":
		m.commit(m.focus)
		m.setFocus((m.focus - 1 + len(m.rows)) % len(m.rows))
		return m, nil

	case "pgup", "pgdown":
		n := 1
		if key.String() == "pgdown" {
			n = -1
		}
		m.nudge(n)
		return m, nil

	case "ctrl+d":
		m.reset()
		m.result, m.errMsg, m.errHint = nil, "", ""
		return m, nil

	case "enter":
		m.commit(m.focus)
		m.submit()
		return m, nil
	}

	cur := &m.rows[m.focus]
	if cur.isClass {
		switch key.String() {
		case "left", "h":
			m.cycleClass(-1)
		case "right", "l", " ":
			m.cycleClass(1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	cur.input, cmd = cur.input.Update(msg)
	return m, cmd
}

// commit parses row i's text, clamps it into bounds and rewrites the text.
// Unparseable or non-finite text reverts to the last good value.
func (m *Model) commit(i int) {
	r := &m.rows[i]
	if r.isClass {
		return
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(r.input.Value()), 64)
	if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		r.set(v)
		return
	}
	r.set(r.value)
}

// set stores v clamped and rounded to what the row displays, so the value
// submitted is always the number on screen.
func (r *row) set(v float64) {
	text := r.field.FormatValue(r.field.Clamp(v))
	if shown, err := strconv.ParseFloat(text, 64); err == nil {
		r.value = shown
	}
	r.input.SetValue(text)
}

func (m *Model) nudge(n int) {
	r := &m.rows[m.focus]
	if r.isClass {
		m.cycleClass(n)
		return
	}
	m.commit(m.focus)
	r.set(r.field.Nudge(r.value, n))
}

func (m *Model) cycleClass(n int) {
	opts := len(m.variant.ClassOptions)
	if opts == 0 {
		return
	}
	m.classIdx = ((m.classIdx+n)%opts + opts) % opts
}

func (m *Model) setFocus(i int) {
	for j := range m.rows {
		if m.rows[j].isClass {
			continue
		}
		if j == i {
			m.rows[j].input.Focus()
			m.rows[j].input.CursorEnd()
		} else {
			m.rows[j].input.Blur()
		}
	}
	m.focus = i
}

// Snapshot captures the committed values.
func (m Model) Snapshot() soil.Snapshot {
	values := make(map[string]float64, len(m.rows))
	for _, r := range m.rows {
		if !r.isClass {
			values[r.field.Key] = r.value
		}
	}
	return soil.NewSnapshot(m.variant.Name, values, m.class())
}

func (m Model) class() string {
	if !m.variant.HasClass() || len(m.variant.ClassOptions) == 0 {
		return ""
	}
	return m.variant.ClassOptions[m.classIdx]
}

// submit runs the gate and, when ready, the prediction.
func (m *Model) submit() {
	snap := m.Snapshot()
	m.result, m.errMsg, m.errHint = nil, "", ""

	if verdict := m.variant.Check(snap); !verdict.Ready {
		m.errMsg = predict.MsgNotReady
		m.errHint = "Check: " + strings.Join(m.labelsFor(verdict.Failed), ", ")
		return
	}

	m.attempts++
	res, err := m.runner.Run(m.ctx, snap)
	if err != nil {
		m.errMsg, m.errHint = predict.Message(err)
		return
	}
	m.result = res
}

func (m Model) labelsFor(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if f, ok := m.variant.Field(k); ok {
			out = append(out, f.Label)
		} else {
			out = append(out, "AASHTO Soil Class")
		}
	}
	return out
}

// Result returns the last successful prediction, if any.
func (m Model) Result() *predict.Result { return m.result }

// Error returns the last error message and hint.
func (m Model) Error() (string, string) { return m.errMsg, m.errHint }

// Attempts counts predictions handed to the runner.
func (m Model) Attempts() int { return m.attempts }

// Focused returns the index of the focused row.
func (m Model) Focused() int { return m.focus }

// Quitting reports whether the user closed the form.
func (m Model) Quitting() bool { return m.quitting }

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(tui.TitleStyle.Render("🏗️  " + m.variant.Title))
	sb.WriteString("\n")
	sb.WriteString(tui.MutedStyle.Render(m.variant.Layer))
	sb.WriteString("\n\n")
	sb.WriteString(tui.SubtitleStyle.Render(fmt.Sprintf("Input Parameters for %s", strings.ToUpper(m.variant.Name[:1])+m.variant.Name[1:])))
	sb.WriteString("\n\n")

	for i, r := range m.rows {
		cursor := "  "
		labelStyle := tui.LabelStyle
		if i == m.focus {
			cursor = tui.FocusedLabelStyle.Render("> ")
			labelStyle = tui.FocusedLabelStyle
		}
		label := "AASHTO Soil Class"
		if !r.isClass {
			label = r.field.DisplayLabel()
		}
		sb.WriteString(cursor)
		sb.WriteString(labelStyle.Render(runewidth.FillRight(label, m.labelW)))
		sb.WriteString("  ")
		if r.isClass {
			sb.WriteString(tui.ValueStyle.Render("◀ " + m.class() + " ▶"))
		} else {
			sb.WriteString(r.input.View())
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	focused := m.rows[m.focus]
	if focused.isClass {
		sb.WriteString(tui.MutedStyle.Render("Select the AASHTO soil classification"))
	} else {
		help := focused.field.Help
		bounds := fmt.Sprintf("min %s", focused.field.FormatValue(focused.field.Min))
		if focused.field.HasMax {
			bounds += fmt.Sprintf(", max %s", focused.field.FormatValue(focused.field.Max))
		}
		sb.WriteString(tui.MutedStyle.Render(fmt.Sprintf("%s (%s)", help, bounds)))
	}
	sb.WriteString("\n\n")

	if verdict := m.variant.Check(m.Snapshot()); verdict.Ready {
		sb.WriteString(tui.StatusReady + " Ready to predict\n")
	} else {
		sb.WriteString(tui.StatusNotReady + " " + tui.WarningStyle.Render("⚠️  "+predict.MsgNotReady) + "\n")
	}

	switch {
	case m.result != nil:
		body := tui.SuccessStyle.Render("✅ Prediction Successful!") + "\n" +
			tui.FormatKeyValue("Predicted Resilient Modulus", m.result.Display())
		if m.result.Demo {
			body += "\n" + tui.WarningStyle.Render(predict.MsgDemoNote)
		}
		sb.WriteString("\n" + tui.ResultStyle.Render(body) + "\n")
	case m.errMsg != "":
		body := tui.ErrorStyle.Render("❌ " + m.errMsg)
		if m.errHint != "" {
			body += "\n" + tui.MutedStyle.Render(m.errHint)
		}
		sb.WriteString("\n" + tui.ErrorPanelStyle.Render(body) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(tui.MutedStyle.Render("tab/↑↓ move • pgup/pgdn step • ←→ class • enter predict • ctrl+d reset • esc quit"))
	sb.WriteString("\n")
	return sb.String()
}

// Run shows the form until the user quits.
func Run(ctx context.Context, r Runner) error {
	p := tea.NewProgram(New(ctx, r))
	_, err := p.Run()
	return err
}
