package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"nilgate/internal/checkin/adapters"
	checkinhandler "nilgate/internal/checkin/handler"
	checkinmetrics "nilgate/internal/checkin/metrics"
	"nilgate/internal/checkin/ports"
	checkinservice "nilgate/internal/checkin/service"
	"nilgate/internal/checkin/settlement"
	checkinstore "nilgate/internal/checkin/store"
	"nilgate/internal/compliance"
	compliancehandler "nilgate/internal/compliance/handler"
	compliancemetrics "nilgate/internal/compliance/metrics"
	"nilgate/internal/featuregate"
	flagmetrics "nilgate/internal/featuregate/metrics"
	"nilgate/internal/platform/config"
	"nilgate/internal/platform/httpserver"
	"nilgate/internal/platform/logger"
	platformmetrics "nilgate/internal/platform/metrics"
	platformredis "nilgate/internal/platform/redis"
	"nilgate/internal/presence"
	"nilgate/internal/socialproof"
	httptransport "nilgate/internal/transport/http"
	"nilgate/pkg/platform/circuit"
	"nilgate/pkg/platform/jsonclient"
)

const shutdownTimeout = 10 * time.Second

// userAgent identifies the gate to its collaborators.
var userAgent = jsonclient.WithHeader("User-Agent", "nilgate")

// main wires high-level dependencies and owns the server lifecycle. Business
// logic lives in the internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	health := map[string]httptransport.HealthCheck{}

	table, err := loadRules(ctx, cfg.Rules, health)
	if err != nil {
		return err
	}
	evaluator, err := compliance.NewEvaluator(table,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliancemetrics.New(reg)),
	)
	if err != nil {
		return err
	}
	log.Info("jurisdiction rules loaded", "count", table.Len())

	presenceChecker, hotspots, err := buildPresence(ctx, cfg, log)
	if err != nil {
		return err
	}
	verifier, err := buildSocialProof(cfg, log)
	if err != nil {
		return err
	}

	gate, poller, err := buildFeatureGate(ctx, cfg.Flags, reg, log)
	if err != nil {
		return err
	}
	poller.Start()
	defer poller.Stop()

	store, closeStore, err := buildStore(ctx, cfg.Redis, health, log)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := buildSettlement(ctx, cfg.Settlement, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	collaboratorTimeout := max(cfg.Presence.Timeout, cfg.Social.Timeout)
	svc, err := checkinservice.New(store,
		adapters.NewComplianceAdapter(evaluator),
		adapters.NewPresenceAdapter(presenceChecker),
		adapters.NewSocialProofAdapter(verifier),
		adapters.NewFlagAdapter(gate),
		publisher,
		checkinservice.WithLogger(log),
		checkinservice.WithMetrics(checkinmetrics.New(reg)),
		checkinservice.WithTimeout(collaboratorTimeout),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Handlers: []httptransport.Registrar{
			compliancehandler.New(evaluator, log),
			checkinhandler.New(svc, log, checkinhandler.WithHotspots(hotspots)),
		},
		Gate:     gate,
		Gatherer: reg,
		Metrics:  platformmetrics.New(reg),
		Health:   health,
		Logger:   log,
	})
	srv := httpserver.New(cfg.Server.Addr, router, httpserver.ForCollaborators(collaboratorTimeout))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting nilgate", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// loadRules reads the jurisdiction table from Postgres when configured and
// from the embedded defaults otherwise.
func loadRules(ctx context.Context, cfg config.Rules, health map[string]httptransport.HealthCheck) (*compliance.RuleTable, error) {
	if cfg.DatabaseURL == "" {
		return compliance.DefaultTable()
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open rules database: %w", err)
	}
	health["postgres"] = db.PingContext
	return compliance.LoadFromPostgres(ctx, db)
}

// buildPresence returns the presence collaborator and the hotspot source
// behind GET /checkins/hotspots/{dealID}. Both are remote or both are local.
func buildPresence(ctx context.Context, cfg config.Config, log *slog.Logger) (adapters.PresenceChecker, presence.HotspotGetter, error) {
	if cfg.Presence.URL != "" {
		client, err := presence.NewClient(cfg.Presence.URL, cfg.Presence.Timeout, userAgent)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}
	hotspots := presence.NewHotspotStore()
	if cfg.Rules.HotspotsFile != "" {
		f, err := os.Open(cfg.Rules.HotspotsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open hotspots file: %w", err)
		}
		defer f.Close()
		loaded, err := presence.LoadHotspots(f)
		if err != nil {
			return nil, nil, err
		}
		for _, h := range loaded {
			if err := hotspots.Register(ctx, h); err != nil {
				return nil, nil, err
			}
		}
		log.Info("hotspots loaded", "count", len(loaded))
	}
	return presence.NewLocalChecker(hotspots, presence.WithLogger(log)), hotspots, nil
}

func buildSocialProof(cfg config.Config, log *slog.Logger) (*socialproof.Verifier, error) {
	var collaborator socialproof.Collaborator = socialproof.Unconfigured{}
	if cfg.Social.URL != "" {
		client, err := socialproof.NewClient(cfg.Social.URL, cfg.Social.Timeout, userAgent)
		if err != nil {
			return nil, err
		}
		collaborator = client
	} else {
		log.Warn("no social proof service configured; social verification will report unavailable")
	}
	return socialproof.NewVerifier(collaborator, socialproof.WithLogger(log))
}

func buildFeatureGate(ctx context.Context, cfg config.Flags, reg prometheus.Registerer, log *slog.Logger) (*featuregate.Gate, *featuregate.Poller, error) {
	fallback, err := featuregate.FallbackByName(cfg.Fallback)
	if err != nil {
		return nil, nil, err
	}
	var source featuregate.Source = featuregate.Static(fallback)
	if cfg.URL != "" {
		client, err := featuregate.NewClient(cfg.URL, cfg.Timeout, fallback, userAgent)
		if err != nil {
			return nil, nil, err
		}
		source = client
	}
	gate, err := featuregate.New(source,
		featuregate.WithLogger(log),
		featuregate.WithMetrics(flagmetrics.New(reg)),
		featuregate.WithFallback(fallback),
		featuregate.WithTimeout(cfg.Timeout),
		featuregate.WithBreaker(circuit.New("feature-flags",
			circuit.WithFailureThreshold(cfg.FailureThreshold),
			circuit.WithSuccessThreshold(cfg.SuccessThreshold),
			circuit.WithCooldown(cfg.Cooldown),
		)),
	)
	if err != nil {
		return nil, nil, err
	}
	if _, err := gate.Refresh(ctx); err != nil {
		log.Warn("initial feature flag fetch failed; serving fallback", "error", err)
	}
	poller, err := featuregate.NewPoller(ctx, gate, cfg.PollSchedule, log)
	if err != nil {
		return nil, nil, err
	}
	return gate, poller, nil
}

func buildStore(ctx context.Context, cfg config.RedisConfig, health map[string]httptransport.HealthCheck, log *slog.Logger) (checkinservice.Store, func(), error) {
	client, err := platformredis.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("check-in sessions kept in memory")
		return checkinstore.New(), func() {}, nil
	}
	health["redis"] = client.Health
	return checkinstore.NewRedis(client.Client, checkinstore.WithTTL(cfg.SessionTTL)), func() { _ = client.Close() }, nil
}

func buildSettlement(ctx context.Context, cfg config.Settlement, log *slog.Logger) (ports.SettlementPort, func(), error) {
	if len(cfg.Brokers) == 0 {
		log.Info("settlement events kept in memory")
		return settlement.NewMemoryLog(), func() {}, nil
	}
	publisher, err := settlement.NewKafkaPublisher(cfg.Brokers,
		settlement.WithTopic(cfg.Topic),
		settlement.WithLogger(log),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := publisher.EnsureTopic(ctx, 3, 1); err != nil {
		log.Warn("could not ensure settlement topic", "topic", cfg.Topic, "error", err)
	}
	return publisher, publisher.Close, nil
}
