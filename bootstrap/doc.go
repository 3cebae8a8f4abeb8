// Package bootstrap runs an iockit application: it loads defaults, validates
// the configuration, builds the container from the declarative definition
// table and drives startup and shutdown hooks.
//
// # Quick Start
//
//	cfg, err := config.Load[ShopConfig]("shop")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.NewApp(cfg, bootstrap.WithCatalog(shop.Catalog()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    orders, err := di.Resolve[*shop.OrderService](ctx, app.Container, shop.Components.OrderService)
//	    ...
//	})
//
// Startup binds every table entry to its catalog factory, runs configure
// callbacks, validates the dependency graph and optionally builds every
// definition up front. Shutdown runs stop hooks, closes the container and
// flushes telemetry.
package bootstrap
