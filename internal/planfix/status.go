// Файл: internal/planfix/status.go
package planfix

import (
	"regexp"
	"strconv"
	"strings"

	"electric-service/pkg/constants"
)

// Статусы заказа и статусы задач Планфикса не совпадают один к одному:
// in_progress и on_way с нашей стороны схлопываются в "В работе",
// а несколько названий Планфикса отображаются в один наш статус.

var orderToPlanfix = map[string]string{
	constants.StatusNew:        "Новая",
	constants.StatusAssigned:   "Принята",
	constants.StatusInProgress: "В работе",
	constants.StatusOnWay:      "В работе",
	constants.StatusCompleted:  "Завершена",
	constants.StatusCancelled:  "Отменена",
}

var planfixToOrder = map[string]string{
	"новая":         constants.StatusNew,
	"новое":         constants.StatusNew,
	"в работе":      constants.StatusInProgress,
	"выполняется":   constants.StatusInProgress,
	"принято":       constants.StatusAssigned,
	"подтверждено":  constants.StatusAssigned,
	"завершена":     constants.StatusCompleted,
	"завершено":     constants.StatusCompleted,
	"выполнена":     constants.StatusCompleted,
	"закрыта":       constants.StatusCompleted,
	"отменена":      constants.StatusCancelled,
	"отменено":      constants.StatusCancelled,
}

// MapOrderStatus переводит статус заказа в название статуса Планфикса.
// Неизвестный вход даёт "Новая".
func MapOrderStatus(status string) string {
	if mapped, ok := orderToPlanfix[status]; ok {
		return mapped
	}
	return "Новая"
}

// MapPlanfixStatus переводит название статуса Планфикса в статус заказа.
// Сравнение без учёта регистра, неизвестный вход даёт new.
func MapPlanfixStatus(name string) string {
	if mapped, ok := planfixToOrder[strings.ToLower(strings.TrimSpace(name))]; ok {
		return mapped
	}
	return constants.StatusNew
}

var taskTitleRe = regexp.MustCompile(`Заявка #(\d+)`)

// ExtractOrderID достаёт номер заказа из названия задачи вида
// "Заявка #42 - Иван". Ноль, если название не подходит под шаблон.
func ExtractOrderID(title string) uint64 {
	m := taskTitleRe.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
