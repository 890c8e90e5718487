package exportfile

import (
	"github.com/foxseedlab/kaigolog/internal/clock"
	"github.com/foxseedlab/kaigolog/internal/config"
	"github.com/foxseedlab/kaigolog/internal/export"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (export.Exporter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		clk := do.MustInvoke[clock.Clock](i)
		return NewFileExporter(cfg.ExportDir, clk), nil
	})
}
