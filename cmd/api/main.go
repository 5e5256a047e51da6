// Command api wires the ledger's adapters together: the postgres event
// store, the optional Auth0 identity validator, the optional S3-compatible
// archive, and the WebSocket notification hub. It boards a demonstration
// contract through internal/operations and derives its state through
// internal/derive, the same round trip any real caller makes. There is no
// HTTP server in front of the ledger itself — the wire protocol callers
// use to reach it is outside this module's scope, so this binary is the
// thinnest possible caller plus the WebSocket upgrade endpoint the
// notification hub needs.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dafibh/murabaha-ledger/internal/archive"
	"github.com/dafibh/murabaha-ledger/internal/config"
	"github.com/dafibh/murabaha-ledger/internal/derive"
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/identity"
	"github.com/dafibh/murabaha-ledger/internal/money"
	"github.com/dafibh/murabaha-ledger/internal/notify"
	"github.com/dafibh/murabaha-ledger/internal/operations"
	"github.com/dafibh/murabaha-ledger/internal/store/postgres"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate event store schema")
	}
	log.Info().Msg("connected to event store")

	eventStore := postgres.New(pool, log.Logger)
	defer eventStore.Close()

	if cfg.Auth0Domain != "" {
		if _, err := identity.NewTokenValidator(cfg.Auth0Domain, cfg.Auth0Audience); err != nil {
			log.Fatal().Err(err).Msg("failed to build token validator")
		}
		log.Info().Str("domain", cfg.Auth0Domain).Msg("identity adapter configured")
	}

	if cfg.Archive.AccessKeyID != "" {
		if _, err := archive.New(ctx, archive.Config{
			Bucket:          cfg.Archive.Bucket,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		}); err != nil {
			log.Fatal().Err(err).Msg("failed to reach archive store")
		}
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("archive adapter configured")
	}

	hub := notify.NewHub(log.Logger)
	ops := operations.New(eventStore, log.Logger, operations.WithPublisher(hub))

	mux := http.NewServeMux()
	mux.HandleFunc("/notify", upgradeHandler(hub, log.Logger))

	server := &http.Server{Addr: cfg.NotifyAddr, Handler: mux}
	go func() {
		log.Info().Str("addr", cfg.NotifyAddr).Msg("starting notification listener")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("notification listener failed")
		}
	}()

	if err := boardDemoContract(ctx, ops, eventStore); err != nil {
		log.Error().Err(err).Msg("demo contract boarding failed")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("notification listener forced to shutdown")
	}
	log.Info().Msg("exited")
}

// boardDemoContract boards a single Murabaha contract and derives its
// state, proving the write side and internal/derive agree on the shape
// of a freshly boarded ledger entry.
func boardDemoContract(ctx context.Context, ops *operations.Operations, eventStore *postgres.Store) error {
	start := money.DateFromTime(time.Now())
	meta := fact.TxMetadata{Author: "system", Reason: fact.ReasonBoarding, Note: "startup demo contract"}

	contractID, _, err := ops.BoardContract(ctx, operations.BoardContractInput{
		ExternalID:              "DEMO-0001",
		BorrowerRef:             "demo-borrower",
		Principal:               money.New(100000),
		SecurityDepositRequired: money.New(10000),
		StartDate:               start,
		Installments: []operations.InstallmentInput{
			{Seq: 1, DueDate: start, PrincipalDue: money.New(50000), ProfitDue: money.New(2500)},
			{Seq: 2, DueDate: start, PrincipalDue: money.New(50000), ProfitDue: money.New(2500)},
		},
	}, meta)
	if err != nil {
		return err
	}

	view, err := eventStore.CurrentSnapshot(ctx)
	if err != nil {
		return err
	}
	state, err := derive.Derive(view, contractID, start)
	if err != nil {
		return err
	}
	log.Info().
		Str("contract_id", contractID).
		Str("outstanding", state.TotalOutstanding.String()).
		Msg("demo contract boarded")
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// upgradeHandler upgrades a plain HTTP request to a WebSocket connection
// and registers it with hub for the contract named in the "contract_id"
// query parameter. There is no router framework in front of it; the HTTP
// transport layer is out of scope, so this is the smallest possible
// bridge from a raw net/http handler into the hub.
func upgradeHandler(hub *notify.Hub, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contractID := r.URL.Query().Get("contract_id")
		if contractID == "" {
			http.Error(w, "contract_id is required", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		client := notify.NewClient(conn, contractID, hub, logger)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}
}
