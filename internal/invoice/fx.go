package invoice

import (
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"github.com/smallbiznis/billdesk/internal/invoice/service"
	"github.com/spf13/afero"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(afero.NewOsFs),
	fx.Provide(render.NewRenderer),
	fx.Provide(service.NewAssembler),
)
