package display

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/session"
)

type fakeSource struct{ view session.View }

func (f *fakeSource) View() session.View { return f.view }

func runningView() session.View {
	step := domain.Step{ID: "s1", Label: "Randori", DurationSec: 90, Side: domain.SideOmote, Color: domain.ColorRed}
	next := domain.Step{ID: "s2", Label: "Rest", DurationSec: 30}
	return session.View{
		Snapshot: domain.Snapshot{
			Status:       domain.StatusRunning,
			StepCount:    2,
			CurrentStep:  &step,
			NextStep:     &next,
			RemainingSec: 75,
			TotalSec:     120,
		},
		Title:     "Randori / Person 1",
		NextTitle: "Rest",
	}
}

func TestFmtClock(t *testing.T) {
	tests := []struct {
		sec  int
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{9, "0:09"},
		{75, "1:15"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fmtClock(tt.sec), "sec=%d", tt.sec)
	}
}

func TestFmtDuration(t *testing.T) {
	assert.Equal(t, "0s", fmtDuration(-time.Second))
	assert.Equal(t, "45s", fmtDuration(45*time.Second))
	assert.Equal(t, "2m05s", fmtDuration(125*time.Second))
}

func TestFormatView(t *testing.T) {
	assert.Equal(t, "nothing loaded", FormatView(session.View{}))

	v := runningView()
	assert.Equal(t, "running  step 1/2  Randori / Person 1  1m15s left", FormatView(v))

	v.Countdown = 2
	assert.Contains(t, FormatView(v), "(starting in 2)")

	v = runningView()
	v.Status = domain.StatusFinished
	assert.NotContains(t, FormatView(v), "left")
}

func TestRenderStep(t *testing.T) {
	v := runningView()
	out := renderStep(v)
	assert.Contains(t, out, "Randori / Person 1")
	assert.Contains(t, out, "1:15")

	v.Status = domain.StatusFinished
	assert.Contains(t, renderStep(v), "DONE")

	v.Countdown = 3
	out = renderStep(v)
	assert.Contains(t, out, "Ready  3")
	assert.NotContains(t, out, "Randori")
}

func TestTitleStyleFollowsColor(t *testing.T) {
	assert.Equal(t, redStyle.GetForeground(), titleStyle(domain.ColorRed).GetForeground())
	assert.Equal(t, blueStyle.GetForeground(), titleStyle(domain.ColorBlue).GetForeground())
	assert.Equal(t, plainTitleStyle.GetForeground(), titleStyle(domain.ColorNone).GetForeground())
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "DojoTimer", windowTitle(session.View{}))
	assert.Equal(t, "DojoTimer | Randori / Person 1 1:15", windowTitle(runningView()))
}

func TestModelRefreshesOnTick(t *testing.T) {
	src := &fakeSource{}
	m := newModel(src, time.Second, make(chan string, 1), make(chan struct{}))
	assert.NotContains(t, m.View(), "Step")

	src.view = runningView()
	next, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)

	out := next.(model).View()
	assert.Contains(t, out, "Step 1/2")
	assert.Contains(t, out, "Next: Rest")
	assert.Contains(t, out, "running")
}

func TestModelEnterSendsInput(t *testing.T) {
	inputCh := make(chan string, 1)
	m := newModel(&fakeSource{}, time.Second, inputCh, make(chan struct{}))

	var echoed string
	m.echoFn = func(s string) { echoed = s }
	m.input.SetValue("pause")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, "pause", <-inputCh)
	assert.Equal(t, "pause", echoed)
	assert.Empty(t, next.(model).input.Value())
}

func TestModelEnterIgnoresBlank(t *testing.T) {
	inputCh := make(chan string, 1)
	m := newModel(&fakeSource{}, time.Second, inputCh, make(chan struct{}))
	m.input.SetValue("   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, inputCh)
}
