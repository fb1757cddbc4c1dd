package broadcast

import (
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// Planner разбивает диапазон user id на окна фиксированного размера
// Количество окон - потолок от maxID / windowSize, само значение maxID
// дальше нигде не хранится: окна вычисляются заново при каждом запуске
type Planner struct {
	windowSize int64
}

// NewPlanner создает новый планировщик окон
func NewPlanner(windowSize int) *Planner {
	return &Planner{windowSize: int64(windowSize)}
}

// Plan возвращает непрерывные окна [1, W], [W+1, 2W], ... покрывающие [1, maxID]
// Последнее окно может выходить за maxID - несуществующие id отфильтрует резолвер
// При maxID = 0 (пустая таблица пользователей) окон нет
func (p *Planner) Plan(maxID int64) []domain.Window {
	if maxID <= 0 || p.windowSize <= 0 {
		return []domain.Window{}
	}

	windows := make([]domain.Window, 0, maxID/p.windowSize+1)
	for start := int64(1); start <= maxID; start += p.windowSize {
		windows = append(windows, domain.Window{
			StartID: start,
			EndID:   start + p.windowSize - 1,
		})
	}

	return windows
}
