package storage

import (
	"path/filepath"

	"github.com/foxseedlab/kaigolog/internal/config"
	internalstorage "github.com/foxseedlab/kaigolog/internal/storage"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (internalstorage.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "kaigolog.db"))
	})
}
