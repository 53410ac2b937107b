package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/megandevlan/ADF/internal/adapter/http"
	kafkaadapter "github.com/megandevlan/ADF/internal/adapter/kafka"
	"github.com/megandevlan/ADF/internal/adapter/netcdf"
	"github.com/megandevlan/ADF/internal/adapter/plot"
	"github.com/megandevlan/ADF/internal/adapter/table"
	"github.com/megandevlan/ADF/internal/config"
	"github.com/megandevlan/ADF/internal/observability"
	"github.com/megandevlan/ADF/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "Path to the diagnostics configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var opts []pipeline.Option
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(publisher))
		logger.Info("kafka row publishing enabled", "topic", cfg.KafkaTopic)
	}
	if cfg.PlotAnnualSeries {
		opts = append(opts, pipeline.WithPlotter(plot.NewPlotter(cfg.OutputDir)))
	}

	tables := func(caseName string) pipeline.TableWriter {
		return table.NewWriter(cfg.OutputDir, caseName, cfg.CreateHTML, logger)
	}
	p := pipeline.New(cfg.Cases, cfg.Variables, netcdf.NewStore(logger), tables, logger, metrics, clockwork.NewRealClock(), opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.ServeAddr != "" {
		srv = httpadapter.NewServer(cfg.ServeAddr, cfg.OutputDir, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := p.Run(ctx)

	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile, prometheus.DefaultGatherer); err != nil {
			logger.Error("metrics textfile", "error", err)
		}
	}

	if srv != nil && runErr == nil {
		logger.Info("serving tables", "addr", cfg.ServeAddr)
		<-ctx.Done()
	}

	shutdown(cfg, srv, publisher, logger)

	if runErr != nil {
		os.Exit(1)
	}
}

func shutdown(cfg *config.Config, srv *httpadapter.Server, publisher *kafkaadapter.Publisher, logger *slog.Logger) {
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
