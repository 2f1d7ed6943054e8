package planfix

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"electric-service/pkg/constants"
)

func TestMapOrderStatus(t *testing.T) {
	cases := map[string]string{
		constants.StatusNew:        "Новая",
		constants.StatusAssigned:   "Принята",
		constants.StatusInProgress: "В работе",
		constants.StatusOnWay:      "В работе",
		constants.StatusCompleted:  "Завершена",
		constants.StatusCancelled:  "Отменена",
	}
	for in, want := range cases {
		assert.Equal(t, want, MapOrderStatus(in), "status=%s", in)
	}

	// Неизвестный статус уходит в дефолт.
	assert.Equal(t, "Новая", MapOrderStatus("что-то странное"))
	assert.Equal(t, "Новая", MapOrderStatus(""))
}

func TestMapPlanfixStatus(t *testing.T) {
	cases := map[string]string{
		"Новая":        constants.StatusNew,
		"новое":        constants.StatusNew,
		"В работе":     constants.StatusInProgress,
		"ВЫПОЛНЯЕТСЯ":  constants.StatusInProgress,
		"Принято":      constants.StatusAssigned,
		"Подтверждено": constants.StatusAssigned,
		"Завершена":    constants.StatusCompleted,
		"завершено":    constants.StatusCompleted,
		"Выполнена":    constants.StatusCompleted,
		"Закрыта":      constants.StatusCompleted,
		"Отменена":     constants.StatusCancelled,
		"отменено":     constants.StatusCancelled,
		" В работе ":   constants.StatusInProgress,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapPlanfixStatus(in), "name=%q", in)
	}

	assert.Equal(t, constants.StatusNew, MapPlanfixStatus("Неизвестный статус"))
	assert.Equal(t, constants.StatusNew, MapPlanfixStatus(""))
}

func TestExtractOrderID(t *testing.T) {
	assert.Equal(t, uint64(42), ExtractOrderID("Заявка #42 - Иван"))
	assert.Equal(t, uint64(7), ExtractOrderID("Заявка #7"))
	assert.Equal(t, uint64(105), ExtractOrderID("Срочно: Заявка #105 - Пётр Сидоров"))

	assert.Zero(t, ExtractOrderID("Обычная задача"))
	assert.Zero(t, ExtractOrderID("Заявка #"))
	assert.Zero(t, ExtractOrderID("Заявка 42"))
	assert.Zero(t, ExtractOrderID(""))
}
