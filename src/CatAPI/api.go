package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
	"github.com/stake-plus/spycat-agency/src/CatAPI/breeds"
	"github.com/stake-plus/spycat-agency/src/CatAPI/config"
	"github.com/stake-plus/spycat-agency/src/CatAPI/data"
	"github.com/stake-plus/spycat-agency/src/CatAPI/notify"
	"github.com/stake-plus/spycat-agency/src/CatAPI/telemetry"
	"github.com/stake-plus/spycat-agency/src/CatAPI/webserver"
	"github.com/stake-plus/spycat-agency/src/cache"
	"github.com/stake-plus/spycat-agency/src/logging"
)

const (
	breedsMemoryBytes = 8 << 20
	breedsL1Expire    = 5 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

func main() {
	v := viper.New()
	root := &cobra.Command{
		Use:           "spycat",
		Short:         "Spy Cat Agency API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addPersistentFlags(root, v)
	root.AddCommand(serveCmd(v), migrateCmd(v), missionsCmd(v))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags(root *cobra.Command, v *viper.Viper) {
	pf := root.PersistentFlags()
	pf.String("db-driver", "", "database driver: postgres, mysql or sqlite (env DB_DRIVER)")
	pf.String("database-url", "", "database DSN (env DATABASE_URL)")
	pf.String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	_ = v.BindPFlag("db_driver", pf.Lookup("db-driver"))
	_ = v.BindPFlag("database_url", pf.Lookup("database-url"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
}

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("port", "", "listen port (env PORT)")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logging.New(cfg.LogLevel, cfg.AppName)
	slog.SetDefault(log)

	tel, err := telemetry.Setup(ctx, cfg.AppName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(flushCtx); err != nil {
			log.Warn("telemetry flush failed", "error", err)
		}
	}()

	db, err := data.Open(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return err
	}
	if err := data.Migrate(db); err != nil {
		return err
	}
	rdb, err := data.OpenRedis(cfg.RedisURL)
	if err != nil {
		return err
	}

	mem, err := cache.NewMemory(breedsMemoryBytes)
	if err != nil {
		return err
	}
	defer mem.Close()

	var breedCache cache.Cache = mem
	var publishers notify.Multi
	if rdb != nil {
		defer rdb.Close()
		breedCache = cache.NewTiered(mem, cache.NewRedis(rdb, "spycat:"), breedsL1Expire)
		publishers = append(publishers, notify.NewRedisStream(rdb, data.StreamMissions))
	}
	if cfg.DiscordWebhookURL != "" {
		d, err := notify.NewDiscord(cfg.DiscordWebhookURL, log)
		if err != nil {
			log.Warn("discord notifications disabled", "error", err)
		} else {
			publishers = append(publishers, d)
		}
	}

	registry := breeds.NewClient(breeds.Options{
		URL:      cfg.BreedsURL,
		Timeout:  cfg.BreedsTimeout,
		Cache:    breedCache,
		CacheTTL: cfg.BreedsCacheTTL,
	})
	svc := agency.NewService(db, registry, publishers, log)

	gin.SetMode(gin.ReleaseMode)
	router := webserver.New(cfg, webserver.Deps{Service: svc, DB: db, Redis: rdb, Log: log})

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      tel.Handler(router, cfg.AppName),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	log.Info("spy cat agency API listening", "port", cfg.Port, "db_driver", cfg.DBDriver, "redis", rdb != nil, "telemetry", tel.Enabled())

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case <-sigCtx.Done():
	case err := <-errc:
		return fmt.Errorf("http: %w", err)
	}

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}
