package pdf

import (
	"context"
)

type Provider interface {
	GenerateStatement(ctx context.Context, data StatementData) ([]byte, error)
}
