package tracker

import (
	"github.com/foxseedlab/kaigolog/internal/clock"
	"github.com/foxseedlab/kaigolog/internal/config"
	"github.com/foxseedlab/kaigolog/internal/storage"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Tracker, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[storage.Store](i)
		clk := do.MustInvoke[clock.Clock](i)
		return NewTracker(cfg, store, clk), nil
	})
}
