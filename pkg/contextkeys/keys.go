package contextkeys

type contextKey string

const (
	// UserIDKey - ID аутентифицированного пользователя (из JWT).
	UserIDKey contextKey = "userID"
	// UserRoleKey - роль пользователя (client/executor).
	UserRoleKey contextKey = "userRole"
)
