package ctxlogger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type submissionKey struct{}

type customerKey struct{}

// ContextWithSubmission tags the context with a fresh submission id unless
// one is already present.
func ContextWithSubmission(ctx context.Context) (context.Context, string) {
	if id := SubmissionID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, submissionKey{}, id), id
}

func SubmissionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(submissionKey{}).(string)
	return id
}

// ContextWithCustomer annotates the context with the customer being billed.
func ContextWithCustomer(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, customerKey{}, name)
}

// WithContext enriches the provided logger using metadata in the context.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil || base == nil {
		return base
	}

	fields := make([]zap.Field, 0, 2)
	if id := SubmissionID(ctx); id != "" {
		fields = append(fields, zap.String("submission_id", id))
	}
	if name, ok := ctx.Value(customerKey{}).(string); ok && name != "" {
		fields = append(fields, zap.String("customer", name))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
