package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/service"
	"github.com/Jamolkhon5/clarifi/internal/widget"
)

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	ctrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
)

func TestModel_TypeSelectAndSubmit(t *testing.T) {
	var copied []string
	w := widget.New(service.NewLocalProvider(), widget.WithClipboard(func(s string) error {
		copied = append(copied, s)
		return nil
	}))
	defer w.Close()

	m := New(w)
	assert.Contains(t, m.View(), "Get Clarity")

	// пустой ввод не отправляется
	m = press(t, m, ctrlS)
	assert.Nil(t, w.State().Analysis)

	m = press(t, m, runes("should I move to Berlin"))
	assert.Equal(t, "should I move to Berlin", w.State().Situation)

	m = press(t, m, tab)
	assert.Equal(t, models.ContextProject, w.State().Context)
	m = press(t, m, tab)
	assert.Equal(t, models.ContextCareer, w.State().Context)
	m = press(t, m, shiftTab)
	assert.Equal(t, models.ContextProject, w.State().Context)
	m = press(t, m, tab, tab)
	assert.Equal(t, models.ContextStudy, w.State().Context)

	m = press(t, m, ctrlS)
	require.NotNil(t, w.State().Analysis)

	view := m.View()
	assert.Contains(t, view, "Your Clarity Report")
	assert.Contains(t, view, "Reality Summary")
	assert.Contains(t, view, "Key Variables")
	assert.Contains(t, view, "Suggested Next Step")
	assert.Contains(t, view, "study-related decision regarding should I move to Berlin")
	assert.Contains(t, view, "Analyze Another Situation")

	// поле только для чтения, "x" не попадает в ситуацию
	m = press(t, m, runes("x"))
	assert.Equal(t, "should I move to Berlin", w.State().Situation)

	m = press(t, m, runes("c"))
	require.Len(t, copied, 1)
	assert.True(t, strings.HasPrefix(copied[0], "ClariFi Analysis\n\nReality Summary:\n"))
	assert.Contains(t, m.View(), "Copied")

	m = press(t, m, runes("r"))
	s := w.State()
	assert.Empty(t, s.Situation)
	assert.Nil(t, s.Analysis)
	assert.False(t, s.Copied)
	assert.Equal(t, "", m.input.Value())
	assert.Contains(t, m.View(), "Get Clarity")
}

func TestModel_RemoteErrorShown(t *testing.T) {
	release := make(chan struct{})
	provider := service.ProviderFunc(func(ctx context.Context, _ string, _ models.Context) (*models.Analysis, error) {
		<-release
		return nil, errors.New("503")
	})
	w := widget.New(provider, widget.WithMode(widget.ModeRemote))
	defer w.Close()

	m := New(w)
	m = press(t, m, runes("s"), ctrlS)
	assert.Contains(t, m.View(), "Analyzing...")

	close(release)
	w.Wait()

	next, _ := m.Update(stateChangedMsg{})
	m = next.(Model)
	view := m.View()
	assert.Contains(t, view, widget.GenericErrorMessage)
	assert.NotContains(t, view, "Analyzing...")
}

func TestModel_CopyFailureStatus(t *testing.T) {
	w := widget.New(service.NewLocalProvider(), widget.WithClipboard(func(string) error {
		return errors.New("no clipboard utility")
	}))
	defer w.Close()

	m := New(w)
	m = press(t, m, runes("s"), ctrlS, runes("c"))
	assert.Contains(t, m.View(), "Copy failed")
	assert.False(t, w.State().Copied)
}

func TestModel_QuitClosesWidget(t *testing.T) {
	w := widget.New(service.NewLocalProvider())
	m := New(w)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, w.SetSituation("x"), widget.ErrClosed)
}

func TestWriteClipboard(t *testing.T) {
	old := clipboardWriteAll
	var got string
	clipboardWriteAll = func(s string) error { got = s; return nil }
	defer func() { clipboardWriteAll = old }()

	require.NoError(t, WriteClipboard("report"))
	assert.Equal(t, "report", got)
}

func TestCycleContext(t *testing.T) {
	assert.Equal(t, models.ContextStudy, cycleContext(models.ContextCareer, 1))
	assert.Equal(t, models.ContextProject, cycleContext(models.ContextCareer, -1))
	assert.Equal(t, models.ContextPersonal, cycleContext("bogus", 1))
}
