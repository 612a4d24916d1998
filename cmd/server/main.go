package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dokter-remaja/internal/care"
	"dokter-remaja/internal/config"
	"dokter-remaja/internal/core"
	"dokter-remaja/internal/db"
	"dokter-remaja/internal/dialogue"
	httpserver "dokter-remaja/internal/http"
	"dokter-remaja/internal/llm"
	"dokter-remaja/internal/notify"
	"dokter-remaja/internal/research"
	"dokter-remaja/internal/session"

	_ "github.com/lib/pq"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	log := config.NewLogger(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sessions live in memory unless a database is configured.
	var store session.Store = session.NewMemoryStore()
	var events *db.Notifier
	if cfg.Postgres.URL != "" {
		dbConn, err := openDB(ctx, cfg.Postgres.URL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer dbConn.Close()
		store = db.NewRepository(dbConn)
		events = db.NewNotifier(dbConn, cfg.Postgres.NotifyChannel)
		log.Info("session store: postgres")
	}

	var cache research.Cache
	var redisCache *research.RedisCache
	if cfg.Redis.URL != "" {
		redisCache, err = research.NewRedisCache(ctx, cfg.Redis.URL)
		if err != nil {
			log.WithError(err).Warn("research cache disabled")
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	}

	rules := care.DefaultRules()
	if cfg.CareRulesPath != "" {
		if rules, err = care.LoadRules(cfg.CareRulesPath); err != nil {
			log.Fatalf("care rules: %v", err)
		}
	}

	// A nil sender marks the channel as unconfigured.
	var mailer notify.EmailSender
	if cfg.SendGrid.Enabled() {
		mailer = notify.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.From, "")
	}
	var sms notify.SMSSender
	if cfg.Twilio.Enabled() {
		sms = notify.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
	}

	interviewer := core.NewInterviewer(llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL))
	controller := &dialogue.Controller{
		Questions: interviewer,
		Analyzer:  interviewer,
		Research:  research.NewFetcher(cache, cfg.Redis.CacheTTL, log),
		Notifier:  notify.NewDispatcher(mailer, sms, log),
		Care:      care.NewEngine(rules),
		Log:       log,
	}
	if events != nil {
		controller.OnFinalize = func(ctx context.Context, s *dialogue.Session) {
			if err := events.Notify(ctx, s.ID); err != nil {
				log.WithError(err).WithField("session", s.ID).Warn("finalize notification failed")
			}
		}
	}

	sessions := session.NewManager(store, cfg.TurnLimit, cfg.SessionTTL, log)
	go sessions.RunSweeper(ctx, time.Minute)

	srv := httpserver.NewServer(sessions, controller, log)
	if redisCache != nil {
		srv.Checks["redis"] = redisCache
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(cfg.Origin),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// finalization fetches research and waits on the model
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.WithFields(logrus.Fields{"port": cfg.Port, "turn_limit": cfg.TurnLimit}).Info("server listening")
	<-ctx.Done()
	shutdown(server, log)
}

func openDB(ctx context.Context, url string) (*sql.DB, error) {
	dbConn, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(pingCtx); err != nil {
		dbConn.Close()
		return nil, err
	}
	if err := db.Migrate(ctx, dbConn); err != nil {
		dbConn.Close()
		return nil, err
	}
	return dbConn, nil
}

func shutdown(server *http.Server, log *logrus.Logger) {
	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
