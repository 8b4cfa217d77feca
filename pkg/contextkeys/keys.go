package contextkeys

type contextKey string

const (
	// UserIDKey holds the authenticated user's internal surrogate id (int64).
	UserIDKey contextKey = "UserID"
	// TelegramIDKey holds the authenticated user's Telegram id (int64).
	TelegramIDKey contextKey = "TelegramID"
	// RequestIDKey holds the ULID minted or propagated by the gateway.
	RequestIDKey contextKey = "RequestID"
)
