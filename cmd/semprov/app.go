package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semprov/config"
	"github.com/c360studio/semprov/docstore"
	"github.com/c360studio/semprov/storage"
)

// App wires the stores a command needs.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	// Registry collects the run counters
	registry *prometheus.Registry

	// NATS, only started for the kv map backend
	embeddedServer *server.Server
	natsConn       *nats.Conn
	js             jetstream.JetStream

	// Storage
	docs  docstore.Store
	state storage.StateStore
	maps  storage.MapStore
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
}

// Start opens the document store, the graph state and the rewrite map.
func (a *App) Start(ctx context.Context) error {
	docs, err := a.openDocs(ctx)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	a.docs = docs

	state, err := storage.OpenState(a.cfg.State.Graph)
	if err != nil {
		return fmt.Errorf("open graph state: %w", err)
	}
	a.state = state

	switch a.cfg.State.MapBackend {
	case "kv":
		if err := a.startNATS(ctx); err != nil {
			return fmt.Errorf("start NATS: %w", err)
		}
		maps, err := storage.NewKVMapStore(ctx, a.js, a.cfg.State.KVBucket, a.logger)
		if err != nil {
			return fmt.Errorf("open rewrite map: %w", err)
		}
		a.maps = maps
	default:
		a.maps = storage.NewMapFile(a.cfg.State.Map)
	}
	return nil
}

func (a *App) openDocs(ctx context.Context) (docstore.Store, error) {
	out := a.cfg.Output
	if out.Backend == "s3" {
		s3cfg := docstore.S3Config{
			Endpoint:  out.S3.Endpoint,
			Region:    out.S3.Region,
			Bucket:    out.S3.Bucket,
			Prefix:    out.S3.Prefix,
			AccessKey: out.S3.AccessKey,
			SecretKey: out.S3.SecretKey,
		}
		client, err := docstore.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("Writing documents to S3", "bucket", out.S3.Bucket, "prefix", out.S3.Prefix)
		return docstore.NewS3(client, out.S3.Bucket, out.S3.Prefix), nil
	}
	return docstore.NewFS(out.Dir)
}

func (a *App) startNATS(ctx context.Context) error {
	if a.cfg.NATS.URL != "" && !a.cfg.NATS.Embedded {
		// Connect to external NATS
		a.logger.Info("Connecting to NATS", "url", a.cfg.NATS.URL)
		conn, err := nats.Connect(a.cfg.NATS.URL, nats.Name(appName))
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.natsConn = conn
	} else {
		// Start embedded NATS server
		a.logger.Debug("Starting embedded NATS server", "store_dir", a.cfg.NATS.StoreDir)
		opts := &server.Options{
			Port:      -1, // Random available port
			JetStream: true,
			StoreDir:  a.cfg.NATS.StoreDir,
			NoLog:     true,
			NoSigs:    true,
		}

		ns, err := server.NewServer(opts)
		if err != nil {
			return fmt.Errorf("create embedded NATS server: %w", err)
		}

		go ns.Start()

		// Wait for server to be ready
		if !ns.ReadyForConnections(5 * time.Second) {
			ns.Shutdown()
			return errors.New("embedded NATS server failed to start")
		}

		a.embeddedServer = ns

		// Connect to embedded server
		conn, err := nats.Connect(ns.ClientURL())
		if err != nil {
			ns.Shutdown()
			return fmt.Errorf("connect to embedded NATS: %w", err)
		}
		a.natsConn = conn
	}

	// Get JetStream context
	js, err := jetstream.New(a.natsConn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	a.js = js

	return nil
}

// Shutdown releases everything Start opened and writes the metrics
// textfile if one is configured.
func (a *App) Shutdown() {
	if a.state != nil {
		if err := a.state.Close(); err != nil {
			a.logger.Warn("Failed to close graph state", "error", err)
		}
	}

	// Close NATS connection
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.logger.Debug("NATS drain failed", "error", err)
		}
		a.natsConn.Close()
	}

	// Shutdown embedded server
	if a.embeddedServer != nil {
		a.embeddedServer.Shutdown()
		a.embeddedServer.WaitForShutdown()
	}

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			a.logger.Warn("Failed to write metrics", "path", path, "error", err)
		} else {
			a.logger.Debug("Metrics written", "path", path)
		}
	}
}
