package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/dojotimer/internal/audio"
	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/logger"
	"github.com/hammamikhairi/dojotimer/internal/session"
)

func setupSession(t *testing.T) *session.Session {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	s := session.New(audio.NewNoOp(log), log, session.WithReadyCountdown(false))
	t.Cleanup(s.Close)

	_, err := s.Load(context.Background(), domain.Program{
		ID:    "drill",
		Title: "Drill",
		Rows: []domain.Row{
			{ID: "a", Name: "Uchikomi", DurationSec: 30, SetCount: 1},
			{ID: "b", Name: "Nagekomi", DurationSec: 30, SetCount: 1},
			{ID: "c", Name: "Rest", DurationSec: 20, SetCount: 1},
		},
	})
	require.NoError(t, err)
	return s
}

func TestDispatch(t *testing.T) {
	s := setupSession(t)
	parser := NewParser(logger.New(logger.LevelOff, nil))

	steps := []struct {
		input      string
		wantOK     bool
		wantStatus domain.Status
		wantIndex  int
		wantLeft   int
	}{
		{"start", true, domain.StatusRunning, 0, 30},
		{"goto 3", true, domain.StatusRunning, 2, 20},
		{"set 1:05", true, domain.StatusRunning, 2, 65},
		{"prev", true, domain.StatusRunning, 1, 30},
		{"toggle", true, domain.StatusPaused, 1, 30},
		{"toggle", true, domain.StatusRunning, 1, 30},
		{"next", true, domain.StatusRunning, 2, 65},
		{"help", false, domain.StatusRunning, 2, 65},
		{"reset", true, domain.StatusIdle, 0, 30},
		{"start", true, domain.StatusRunning, 0, 30},
		{"goto 3", true, domain.StatusRunning, 2, 65},
		{"stop", true, domain.StatusIdle, 0, 30},
		{"goto 3", true, domain.StatusIdle, 2, 20},
	}

	for _, st := range steps {
		v, ok := Dispatch(s, parser.Parse(st.input))
		assert.Equal(t, st.wantOK, ok, st.input)
		assert.Equal(t, st.wantStatus, v.Status, st.input)
		assert.Equal(t, st.wantIndex, v.CurrentStepIndex, st.input)
		assert.Equal(t, st.wantLeft, v.RemainingSec, st.input)
	}
}
