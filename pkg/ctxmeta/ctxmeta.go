// Пакет ctxmeta — метаданные запроса (request_id, steam_id, trace_id),
// которые едут через context.Context. От него зависят HTTP-слой, consumer и логгер.
package ctxmeta

import "context"

type ctxKey string

const (
	KeyRequestID ctxKey = "request_id"
	KeySteamID   ctxKey = "steam_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, KeyRequestID)
}

// WithSteamID — помечает контекст Steam ID профиля, который сейчас обрабатывается.
func WithSteamID(ctx context.Context, steamID string) context.Context {
	return withValue(ctx, KeySteamID, steamID)
}

func SteamIDFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, KeySteamID)
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueFrom(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
