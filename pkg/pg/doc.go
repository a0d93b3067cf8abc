// Package pg bootstraps a pgx/v5 connection pool with retries, a health probe
// and goose migrations read from an fs.FS.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, sessionguard.Migrations(), ".", cfg, log); err != nil {
//		return err
//	}
package pg
