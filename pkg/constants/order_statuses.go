package constants

// --- СТАТУСЫ ЗАКАЗОВ (Совпадает со значениями в БД) ---
const (
	StatusNew        = "new"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusOnWay      = "on_way"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// OrderStatuses - полный список допустимых статусов. Любое другое значение
// отклоняется до каких-либо изменений в БД.
var OrderStatuses = []string{
	StatusNew,
	StatusAssigned,
	StatusInProgress,
	StatusOnWay,
	StatusCompleted,
	StatusCancelled,
}

func IsValidStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// --- РОЛИ ПОЛЬЗОВАТЕЛЕЙ ---
const (
	RoleClient   = "client"
	RoleExecutor = "executor"
)

func IsValidRole(role string) bool {
	return role == RoleClient || role == RoleExecutor
}
