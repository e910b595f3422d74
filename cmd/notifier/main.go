// cmd/notifier/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notification-engine/internal/catalog"
	"notification-engine/internal/channels"
	awsclients "notification-engine/internal/common/aws"
	"notification-engine/internal/common/config"
	"notification-engine/internal/common/database"
	"notification-engine/internal/common/httpclient"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/common/observability"
	"notification-engine/internal/conditions"
	"notification-engine/internal/deliverylog"
	"notification-engine/internal/dispatch"
	"notification-engine/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting notification engine", map[string]interface{}{
		"environment": cfg.App.Environment,
		"version":     cfg.App.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := connectPostgres(ctx, cfg, log)
	if err != nil {
		log.Error("postgres unavailable", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	defer pg.Close()

	rds, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.Error("redis client init failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	defer rds.Close()
	if err := rds.Ping(ctx); err != nil {
		log.Warn("redis unreachable at startup, in-app delivery will fail until it recovers", map[string]interface{}{"error": err})
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Persistence boundaries.
	db := pg.GetDB()
	eventStore := store.NewEventStore(db)
	listenerStore := store.NewListenerStore(db)
	templateStore := store.NewTemplateStore(db)
	channelStore := store.NewChannelStore(db)
	userStore := store.NewUserStore(db)

	// Core engine components.
	cat := catalog.New(eventStore, log)
	if err := cat.Reload(ctx); err != nil {
		log.Error("event catalog load failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	index := dispatch.NewListenerIndex(listenerStore, log)
	if err := index.Reload(ctx); err != nil {
		log.Error("listener index load failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	status := channels.NewStatusProvider(channelStore, log)
	if err := status.Reload(ctx); err != nil {
		log.Error("channel config load failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	router, err := buildRouter(ctx, cfg, rds, log)
	if err != nil {
		log.Error("channel sink setup failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	var recorder dispatch.Recorder
	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			log.Warn("elasticsearch client init failed, delivery log disabled", map[string]interface{}{"error": err})
		} else {
			recorder = deliverylog.NewRecorder(es.Client, cfg.Database.Elasticsearch.Index, log)
		}
	}

	evaluator := conditions.NewEvaluator(userStore, log)
	dispatcher := dispatch.NewDispatcher(
		cat, index, listenerStore, evaluator, templateStore,
		router, status, recorder,
		time.Duration(cfg.Engine.MaxDelaySeconds)*time.Second, log,
	)

	srv := &http.Server{
		Addr:    cfg.Metrics.ListenAddr,
		Handler: buildMux(dispatcher, status, obs, log),
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", map[string]interface{}{"error": err})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", map[string]interface{}{"error": err})
	}
}

// connectPostgres retries the initial connection so the engine survives the
// database coming up after it in container environments.
func connectPostgres(ctx context.Context, cfg *config.Config, log logger.Logger) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	var err error

	backoff := time.Second
	for attempt := 1; attempt <= 5; attempt++ {
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err == nil {
			if err = pg.Ping(ctx); err == nil {
				return pg, nil
			}
			pg.Close()
		}

		log.Warn("postgres connection attempt failed", map[string]interface{}{
			"attempt": attempt,
			"error":   err,
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, err
}

// buildRouter registers a sink for every channel enabled in configuration.
// Which channels are active per send is a separate, runtime question answered
// by the status provider.
func buildRouter(ctx context.Context, cfg *config.Config, rds *database.RedisClient, log logger.Logger) (*channels.Router, error) {
	router := channels.NewRouter(log)

	if cfg.Channels.Email.Enabled {
		sesClient, err := awsclients.NewSESClient(ctx, cfg.Channels.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		router.Register(channels.NewEmailSink(sesClient, cfg.Channels.Email.FromEmail, log))
	}

	if cfg.Channels.SMS.Enabled || cfg.Channels.Push.Enabled {
		snsClient, err := awsclients.NewSNSClient(ctx, cfg.Channels.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		if cfg.Channels.SMS.Enabled {
			router.Register(channels.NewSMSSink(snsClient, cfg.Channels.SMS.SenderID, log))
		}
		if cfg.Channels.Push.Enabled {
			router.Register(channels.NewPushSink(snsClient, log))
		}
	}

	if cfg.Channels.WhatsApp.Enabled {
		client := httpclient.NewClient(time.Duration(cfg.Channels.WhatsApp.TimeoutMS) * time.Millisecond)
		router.Register(channels.NewWhatsAppSink(
			client, cfg.Channels.WhatsApp.BaseURL,
			cfg.Channels.WhatsApp.PhoneNumberID, cfg.Channels.WhatsApp.AccessToken, log,
		))
	}

	if cfg.Channels.InApp.Enabled {
		router.Register(channels.NewInAppSink(
			rds.GetClient(), cfg.Channels.InApp.InboxLimit,
			time.Duration(cfg.Channels.InApp.TTLHours)*time.Hour, log,
		))
	}

	return router, nil
}

type triggerRequest struct {
	Event   string                 `json:"event"`
	Data    map[string]interface{} `json:"data"`
	Context map[string]interface{} `json:"context"`
}

func buildMux(d *dispatch.Dispatcher, status *channels.StatusProvider, obs *observability.Observability, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/api/events/trigger", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req triggerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Event == "" {
			http.Error(w, "invalid trigger request", http.StatusBadRequest)
			return
		}

		start := time.Now()
		ok := d.TriggerEvent(r.Context(), req.Event, req.Data, req.Context)

		outcome := "ok"
		if !ok {
			outcome = "error"
		}
		obs.RecordDispatch(r.Context(), outcome)
		obs.RecordDispatchDuration(r.Context(), time.Since(start), outcome)

		writeJSON(w, map[string]interface{}{"triggered": ok})
	})

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, d.GetStats())
	})

	mux.HandleFunc("/api/system/test", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.TestSystem(r.Context()))
	})

	mux.HandleFunc("/api/cache/clear", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		d.ClearCache()
		writeJSON(w, map[string]interface{}{"cleared": true})
	})

	mux.HandleFunc("/api/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx := r.Context()
		if err := d.ReloadEvents(ctx); err != nil {
			log.Error("event reload failed", map[string]interface{}{"error": err})
			http.Error(w, "event reload failed", http.StatusInternalServerError)
			return
		}
		if err := d.ReloadListeners(ctx); err != nil {
			log.Error("listener reload failed", map[string]interface{}{"error": err})
			http.Error(w, "listener reload failed", http.StatusInternalServerError)
			return
		}
		if err := status.Reload(ctx); err != nil {
			log.Error("channel config reload failed", map[string]interface{}{"error": err})
			http.Error(w, "channel config reload failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"reloaded": true})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
