package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// StoreID records the store identifier under the key "store_id".
func StoreID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("store_id", id)
}

// Operation records an administrative operation name under "operation".
func Operation(op string) slog.Attr {
	if op == "" {
		return slog.Attr{}
	}
	return slog.String("operation", op)
}
