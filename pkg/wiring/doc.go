/*
Package wiring builds the whole storage stack inside an fx application.

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal(err)
	}

	app := fx.New(
		wiring.FXModule(*cfg),
		fx.Invoke(func(p struct {
			fx.In
			Store objectstore.Store `name:"minio"`
		}) {
			// use p.Store
		}),
	)
	app.Run()

Backends switched off in the Config are left out of the graph, so asking for
their named Store fails at startup unless the dependency is optional.
*/
package wiring
