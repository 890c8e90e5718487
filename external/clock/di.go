package clock

import (
	"github.com/foxseedlab/kaigolog/internal/clock"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (clock.Clock, error) {
		return NewSystemClock(), nil
	})
}
