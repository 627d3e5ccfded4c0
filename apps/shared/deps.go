// Package shared builds the collaborators the API server and the planner CLI have in common.
package shared

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/workload"
	"github.com/trezcool/ratiba/storage/database"
	"github.com/trezcool/ratiba/storage/database/dummy"
	"github.com/trezcool/ratiba/storage/database/sqlx"
	"github.com/trezcool/ratiba/storage/dataset"
)

// EngineMemory keeps the collections in process memory, without any database.
const EngineMemory = "memory"

type Deps struct {
	Conf      *core.Config
	Logger    core.Logger
	Store     *workload.Store
	Selectors *workload.Selectors

	close func() error
}

// Setup opens the configured storage and loads conf.DatasetPath into the store when set.
func Setup(ctx context.Context, conf *core.Config, logger core.Logger) (*Deps, error) {
	deps := &Deps{
		Conf:      conf,
		Logger:    logger,
		Selectors: workload.NewSelectors(conf.Locale),
		close:     func() error { return nil },
	}

	var repo workload.Repository
	switch conf.Database.Engine {
	case EngineMemory:
		db, err := dummydb.Open()
		if err != nil {
			return nil, errors.Wrap(err, "opening in-memory database")
		}
		repo = dummydb.NewWorkloadRepository(db)
	default:
		db, err := database.Open(conf)
		if err != nil {
			return nil, errors.Wrap(err, "setting up database")
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		deps.close = db.Close
		repo = sqlxrepos.NewWorkloadRepository(db)
	}
	deps.Store = workload.NewStore(repo, logger)

	if conf.DatasetPath != "" {
		if err := deps.LoadDataset(ctx, conf.DatasetPath); err != nil {
			_ = deps.Close()
			return nil, err
		}
	}
	return deps, nil
}

// LoadDataset replaces the store content with the dataset file at path.
func (deps *Deps) LoadDataset(ctx context.Context, path string) error {
	ds, err := dataset.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading dataset")
	}
	if err = deps.Store.Load(ctx, ds); err != nil {
		return errors.Wrap(err, "loading dataset")
	}
	deps.Logger.Info("dataset loaded", map[string]interface{}{
		"path":        path,
		"teachers":    len(ds.Teachers),
		"assignments": len(ds.Assignments),
	})
	return nil
}

func (deps *Deps) Close() error {
	return deps.close()
}
