// Package tui - терминальный интерфейс виджета на Bubble Tea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/service"
	"github.com/Jamolkhon5/clarifi/internal/widget"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// WriteClipboard пишет текст в системный буфер обмена
func WriteClipboard(text string) error {
	return clipboardWriteAll(text)
}

// stateChangedMsg приходит, когда виджет изменил состояние вне Update
// (ответ сервиса, сброс отметки "скопировано").
type stateChangedMsg struct{}

// Notifier передает изменения виджета в запущенную программу
type Notifier struct {
	program atomic.Pointer[tea.Program]
}

// OnChange подходит для widget.WithOnChange. Send выполняется в отдельной
// горутине: вызов может прийти изнутри Update, где канал программы занят.
func (n *Notifier) OnChange(models.State) {
	if p := n.program.Load(); p != nil {
		go p.Send(stateChangedMsg{})
	}
}

type Model struct {
	widget  *widget.Widget
	state   models.State
	input   textarea.Model
	spinner spinner.Model
	styles  Styles
	status  string
	width   int
}

func New(w *widget.Widget) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe your situation, dilemma, or what you're overthinking..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(72)
	ta.SetHeight(4)
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		widget:  w,
		state:   w.State(),
		input:   ta,
		spinner: sp,
		styles:  DefaultStyles(),
		width:   80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m Model) editable() bool {
	return m.state.Analysis == nil && !m.state.Loading
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 8 {
			m.input.SetWidth(min(msg.Width-4, 100))
		}

	case stateChangedMsg:
		m.sync()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.widget.Close()
			return m, tea.Quit

		case "ctrl+s":
			m.status = ""
			if m.widget.CanSubmit() {
				if _, err := m.widget.Submit(context.Background()); err != nil {
					m.status = err.Error()
				}
			}
			m.sync()
			return m, nil

		case "tab", "shift+tab":
			if m.editable() {
				step := 1
				if msg.String() == "shift+tab" {
					step = -1
				}
				_ = m.widget.SelectContext(cycleContext(m.state.Context, step))
				m.sync()
			}
			return m, nil
		}

		if !m.editable() {
			switch msg.String() {
			case "c":
				m.status = ""
				if err := m.widget.Copy(); err != nil && !errors.Is(err, widget.ErrNoAnalysis) {
					m.status = "Copy failed"
				}
			case "r":
				m.status = ""
				m.widget.Reset()
			}
			m.sync()
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		if m.input.Value() != m.state.Situation {
			_ = m.widget.SetSituation(m.input.Value())
		}
		m.sync()

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// sync перечитывает состояние виджета и подгоняет под него поле ввода
func (m *Model) sync() {
	m.state = m.widget.State()
	if m.input.Value() != m.state.Situation {
		m.input.SetValue(m.state.Situation)
	}
	if m.editable() {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func cycleContext(current models.Context, step int) models.Context {
	all := models.Contexts()
	for i, c := range all {
		if c == current {
			return all[(i+step+len(all))%len(all)]
		}
	}
	return models.DefaultContext
}

func (m Model) View() string {
	var b strings.Builder
	s := m.styles

	b.WriteString(s.Title.Render("💡 ClariFi"))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render("Turn confusion into clarity. Get actionable decisions."))
	b.WriteString("\n\n")

	b.WriteString(s.Label.Render("What's on your mind?"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(s.Label.Render("Context"))
	b.WriteString("\n")
	b.WriteString(m.renderContexts())
	b.WriteString("\n\n")

	b.WriteString(m.renderAction())
	b.WriteString("\n")

	if m.state.Loading {
		b.WriteString("\n" + m.spinner.View() + " Analyzing...\n")
	}
	if m.state.Error != "" {
		b.WriteString("\n" + s.Error.Render(m.state.Error) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + s.Error.Render(m.status) + "\n")
	}

	if m.state.Analysis != nil {
		b.WriteString("\n")
		b.WriteString(m.renderReport(*m.state.Analysis))
	}

	b.WriteString("\n")
	b.WriteString(s.Help.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderContexts() string {
	toggles := make([]string, 0, 4)
	for _, c := range models.Contexts() {
		style := m.styles.Toggle
		if c == m.state.Context {
			style = m.styles.Selected
		}
		if !m.editable() {
			style = style.Faint(true)
		}
		toggles = append(toggles, style.Render(c.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, toggles...)
}

func (m Model) renderAction() string {
	if m.state.Analysis != nil {
		return m.styles.Button.Render("Analyze Another Situation")
	}
	if m.widget.CanSubmit() {
		return m.styles.Button.Render("Get Clarity")
	}
	return m.styles.Disabled.Render("Get Clarity")
}

func (m Model) renderReport(a models.Analysis) string {
	s := m.styles
	var b strings.Builder

	copyLabel := "Copy"
	if m.state.Copied {
		copyLabel = s.Success.Render("✓ Copied")
	}
	b.WriteString(s.Label.Render("Your Clarity Report") + "  [" + copyLabel + "]\n\n")

	b.WriteString(s.Section.Render(service.LabelReality) + "\n")
	b.WriteString(s.Body.Render(a.Reality) + "\n\n")

	b.WriteString(s.Section.Render(service.LabelVariables) + "\n")
	for i, v := range a.Variables {
		b.WriteString(s.Body.Render(s.Index.Render(fmt.Sprintf("%d.", i+1))+" "+v) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(s.Section.Render(service.LabelNextStep) + "\n")
	b.WriteString(s.NextStep.Render(a.NextStep) + "\n")
	return b.String()
}

func (m Model) helpLine() string {
	switch {
	case m.state.Analysis != nil:
		return "c copy • r analyze another situation • esc quit"
	case m.state.Loading:
		return "waiting for analysis • esc quit"
	default:
		return "ctrl+s get clarity • tab/shift+tab context • esc quit"
	}
}

// Run запускает программу и закрывает виджет после выхода
func Run(w *widget.Widget, n *Notifier, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(New(w), opts...)
	n.program.Store(p)
	defer w.Close()

	_, err := p.Run()
	return err
}
