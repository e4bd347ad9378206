package bill

import (
	"github.com/smallbiznis/billdesk/internal/bill/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("bill.repository",
	fx.Provide(repository.Provide),
)
