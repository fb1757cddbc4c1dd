package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

func TestPlanner_Plan(t *testing.T) {
	tests := []struct {
		name       string
		windowSize int
		maxID      int64
		expected   []domain.Window
	}{
		{
			name:       "ровное деление",
			windowSize: 500,
			maxID:      1000,
			expected: []domain.Window{
				{StartID: 1, EndID: 500},
				{StartID: 501, EndID: 1000},
			},
		},
		{
			name:       "последнее окно выходит за maxID",
			windowSize: 500,
			maxID:      1200,
			expected: []domain.Window{
				{StartID: 1, EndID: 500},
				{StartID: 501, EndID: 1000},
				{StartID: 1001, EndID: 1500},
			},
		},
		{
			name:       "один пользователь",
			windowSize: 500,
			maxID:      1,
			expected: []domain.Window{
				{StartID: 1, EndID: 500},
			},
		},
		{
			name:       "пустая таблица пользователей",
			windowSize: 500,
			maxID:      0,
			expected:   []domain.Window{},
		},
		{
			name:       "maxID меньше окна",
			windowSize: 500,
			maxID:      42,
			expected: []domain.Window{
				{StartID: 1, EndID: 500},
			},
		},
		{
			name:       "окно размером 1",
			windowSize: 1,
			maxID:      3,
			expected: []domain.Window{
				{StartID: 1, EndID: 1},
				{StartID: 2, EndID: 2},
				{StartID: 3, EndID: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := NewPlanner(tt.windowSize)
			assert.Equal(t, tt.expected, planner.Plan(tt.maxID))
		})
	}
}

func TestPlanner_Plan_WindowsAreContiguous(t *testing.T) {
	planner := NewPlanner(337)
	windows := planner.Plan(10_000)

	assert.Equal(t, int64(1), windows[0].StartID)
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].EndID+1, windows[i].StartID)
	}
	assert.GreaterOrEqual(t, windows[len(windows)-1].EndID, int64(10_000))
}
