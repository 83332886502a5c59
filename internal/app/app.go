package app

import (
	"context"
	"log"
	"net/http"
)

type App struct {
	serviceProvider *ServiceProvider
}

func NewApp() *App {
	return &App{serviceProvider: newServiceProvider()}
}

// Run starts the round engine and serves the HTTP API until the server stops.
func (a *App) Run(ctx context.Context) error {
	router := a.serviceProvider.Router(ctx)

	eng := a.serviceProvider.Engine()
	if err := eng.Start(); err != nil {
		return err
	}
	defer eng.Stop()

	addr := a.serviceProvider.HTTPCfg().Address()
	log.Printf("listening on %s", addr)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	return server.ListenAndServe()
}
