// cmd/server/main.go

// 本服務以 HTTP/JSON 提供帳戶建立、存款、提款、餘額與交易紀錄查詢。
// 此檔案負責載入設定、初始化 logger、組裝模組（ledger, server），
// 並在收到 SIGINT/SIGTERM 時優雅關閉。帳本僅存在記憶體中。

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bankledger/internal/config"
	"bankledger/internal/ledger"
	"bankledger/internal/server"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := newLogger(cfg)

	lim, err := server.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Fatalf("Invalid RATE_LIMIT %q: %v", cfg.RateLimit, err)
	}

	l := ledger.NewLedger(ledger.WithNumberPrefix(cfg.AccountPrefix))
	s := server.NewServer(l, logger, lim)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Ledger server running at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.WithField("accounts", l.Len()).Info("Shutdown complete")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.LogFormat == config.LogFormatText {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.SetLevel(cfg.LogLevel)
	return logger
}
