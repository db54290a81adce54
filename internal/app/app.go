package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"sync"

	"github.com/lcalzada-xor/navify/internal/adapters/reporting"
	"github.com/lcalzada-xor/navify/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/navify/internal/adapters/web/server"
	"github.com/lcalzada-xor/navify/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/navify/internal/config"
	grpcserver "github.com/lcalzada-xor/navify/internal/core/services/grpc"
	"github.com/lcalzada-xor/navify/internal/core/services/hub"
	"github.com/lcalzada-xor/navify/internal/core/services/query"
	"github.com/lcalzada-xor/navify/internal/core/services/session"
	"github.com/lcalzada-xor/navify/internal/core/services/traffic"
	"github.com/lcalzada-xor/navify/internal/telemetry"
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config         *config.Config
	Store          *traffic.Store
	Hub            *hub.Hub
	Mutator        *traffic.Mutator
	SessionService *session.SessionService
	WebServer      *webserver.Server
	GrpcServer     *grpcserver.GrpcServer

	db *storage.SQLiteAdapter
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	if err := app.initStorage(); err != nil {
		return err
	}

	// 2. Traffic core
	if err := app.initTraffic(); err != nil {
		return err
	}

	// 3. Servers
	app.initServers()

	return nil
}

func (app *Application) initStorage() error {
	db, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init session storage: %w", err)
	}
	app.db = db
	app.SessionService = session.NewSessionService(db)
	return nil
}

func (app *Application) initTraffic() error {
	seed, err := traffic.LoadSeed(app.Config.SeedPath)
	if err != nil {
		return err
	}

	store, err := traffic.NewStore(seed, nil)
	if err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}
	app.Store = store

	app.Hub = hub.New(store, websocket.RecordDrops(app.SessionService))

	opts := []traffic.MutatorOption{traffic.WithInterval(app.Config.TickInterval)}
	if app.Config.RandomSeed != 0 {
		opts = append(opts, traffic.WithDeltaSource(traffic.NewRandomWalk(app.Config.RandomSeed)))
	}
	app.Mutator = traffic.NewMutator(store, app.Hub, opts...)

	log.Printf("Loaded %d traffic areas: %v", store.Len(), store.IDs())
	return nil
}

func (app *Application) initServers() {
	app.WebServer = webserver.NewServer(webserver.Options{
		Addr:           app.Config.Addr,
		StaticDir:      app.Config.StaticDir,
		AllowedOrigins: app.Config.AllowedOrigins,
		MapsAPIKey:     app.Config.MapsAPIKey,
	}, webserver.Deps{
		Store:    app.Store,
		Hub:      app.Hub,
		Routes:   query.NewRouteService(app.Store, nil, nil),
		Transit:  query.NewTransitService(app.Store),
		Sessions: app.SessionService,
		Exporter: reporting.NewPDFExporter(),
	})

	if app.Config.GRPCPort != 0 {
		app.GrpcServer = grpcserver.NewGrpcServer()
	}
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting navify components...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	// 1. Traffic loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Mutator.Run(ctx)
	}()

	// 2. Servers
	errChan := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	if app.GrpcServer != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", app.Config.GRPCPort))
		if err != nil {
			cancel()
			wg.Wait()
			app.cleanup()
			return fmt.Errorf("grpc listen error: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("gRPC Server listening on :%d", app.Config.GRPCPort)
			if err := app.GrpcServer.Serve(ctx, lis); err != nil {
				errChan <- fmt.Errorf("grpc server error: %w", err)
			}
		}()
	}

	slog.Info("navify ready", "addr", app.Config.Addr, "tick", app.Mutator.Interval())

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case runErr = <-errChan:
	}

	cancel()
	wg.Wait()
	app.cleanup()
	return runErr
}

func (app *Application) cleanup() {
	slog.Info("Cleaning up resources...")

	if app.Hub != nil {
		app.Hub.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			log.Printf("Error closing session storage: %v", err)
		}
		app.db = nil
	}
}
