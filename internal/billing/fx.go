package billing

import (
	"github.com/smallbiznis/billdesk/internal/billing/domain"
	"github.com/smallbiznis/billdesk/internal/billing/service"
	invoiceservice "github.com/smallbiznis/billdesk/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(func(a *invoiceservice.Assembler) domain.Assembler { return a }),
	fx.Provide(service.New),
)
