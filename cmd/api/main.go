package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"brokergate/internal/broker"
	"brokergate/internal/config"
	"brokergate/internal/events"
	"brokergate/internal/gateway"
	"brokergate/internal/httpserver"
	"brokergate/internal/logger"
	"brokergate/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log.Info().Str("addr", cfg.HTTPAddr).Msg("starting broker session gateway")

	factory := broker.Factory(func() broker.Broker {
		if cfg.ServiceURL == "" {
			return broker.NewDisabled()
		}
		return broker.NewEasyTrader(cfg.ServiceURL)
	})
	if cfg.ServiceURL == "" {
		log.Warn().Msg("EASYTRADER_URL not set, broker backend disabled")
	}

	bus := events.NewBus()
	sessions := session.NewManager(factory, bus, log)
	svc := gateway.NewService(sessions, bus, cfg.CallTimeout, cfg.LoginTimeout, log)
	handler := gateway.NewHandler(svc)
	ws := httpserver.NewEventStream(bus, cfg.WSOrigin, log)

	// Attempt the configured login at startup; failure is a warning,
	// callers can retry via /login.
	if cfg.AutoLogin() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.LoginTimeout)
		err := sessions.Connect(ctx, broker.Credentials{
			Kind:     cfg.BrokerKind,
			Username: cfg.Username,
			Password: cfg.Password,
			ExePath:  cfg.ExePath,
		})
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.BrokerKind).
				Msg("automatic login failed, call /login to retry")
		}
	} else {
		log.Info().Msg("no credentials configured, waiting for /login")
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Gateway:  handler,
		WS:       ws,
		APIToken: cfg.APIToken,
		Log:      log,
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sessions.Disconnect(ctx); err != nil {
			log.Debug().Err(err).Msg("no session to disconnect")
		}
		_ = srv.Shutdown(ctx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
