package thin

import (
	"context"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

type contextKey struct {
	key string
}

var (
	CtxKeyID        = contextKey{key: "ctx-key-id"}
	CtxKeySource    = contextKey{key: "ctx-key-source"}
	CtxKeyStartTime = contextKey{key: "ctx-key-start-time"}
	CtxKeyConfiger  = contextKey{key: "ctx-key-configer"}
)

func SetContextLogID(ctx context.Context, id string, source string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyID, id)
	return context.WithValue(ctx, CtxKeySource, source)
}

func Logger(ctx context.Context) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"source": ctx.Value(CtxKeySource),
		"id":     ctx.Value(CtxKeyID),
	})
}

func RequiredID(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyID).(string); ok {
		return v
	}
	panic("ID is not in context.")
}

func StartTime(ctx context.Context) time.Time {
	if v, ok := ctx.Value(CtxKeyStartTime).(time.Time); ok {
		return v
	}
	return time.Time{}
}

// Configs

func ContextWithConfiger(ctx context.Context, k *koanf.Koanf) context.Context {
	return context.WithValue(ctx, CtxKeyConfiger, k)
}

func Configer(ctx context.Context) *koanf.Koanf {
	if v, ok := ctx.Value(CtxKeyConfiger).(*koanf.Koanf); ok {
		return v
	}
	panic("Configer is not in context.")
}
