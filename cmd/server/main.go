// cmd/server/main.go
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/JulianC775/Gubs/internal/cache"
	"github.com/JulianC775/Gubs/internal/config"
	"github.com/JulianC775/Gubs/internal/database"
	"github.com/JulianC775/Gubs/internal/game"
	"github.com/JulianC775/Gubs/internal/handlers"
	"github.com/JulianC775/Gubs/internal/historian"
	"github.com/JulianC775/Gubs/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	Name      string = "gubs"
	Version   string = "unknown"
	GitCommit string = "unknown"
	BuildAt   string = "unknown"
)

func longVersion() string {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintln(buf, "project:", Name)
	fmt.Fprintln(buf, "version:", Version)
	fmt.Fprintln(buf, "git commit:", GitCommit)
	fmt.Fprintln(buf, "build at:", BuildAt)
	fmt.Fprintln(buf, "build by:", runtime.Version())
	fmt.Fprintln(buf, "running OS/Arch:", runtime.GOOS+"/"+runtime.GOARCH)
	return buf.String()
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(longVersion())
	}
	app := cli.NewApp()
	app.Name = Name
	app.Usage = "multiplayer Gubs game server"
	app.Version = Version
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a yaml/json/toml config file",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log at debug level",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "serve",
			Usage: "run the HTTP and websocket game server",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "port",
					Usage: "listen port, overrides the config",
				},
			},
			Action: serve,
		},
		{
			Name:   "historian",
			Usage:  "drain the Redis action log into PostgreSQL",
			Action: runHistorian,
		},
	}
	app.DefaultCommand = "serve"
	return app
}

// setup loads config and builds the logger shared by every command.
func setup(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg, c.Bool("verbose"))
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	if port := c.Int("port"); port != 0 {
		cfg.Port = port
	}
	rules, err := cfg.HouseRules()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := handlers.NewGameServer(game.NewMemoryStore(), rules, logger)
	s.PublicURL = cfg.PublicURL

	if cfg.RedisAddr != "" {
		rc, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rc.Close()
		rc.QueueName = cfg.ActionQueue
		rc.SnapshotTTL = cfg.SnapshotTTL
		s.Actions = rc
		s.Snapshots = rc

		n, err := s.RestoreSnapshots(ctx)
		if err != nil {
			logger.WithError(err).Warn("failed to restore games")
		}
		logger.WithFields(logrus.Fields{"redis": cfg.RedisAddr, "restored": n}).Info("connected to Redis")
	}

	if cfg.DatabaseURL != "" {
		pool, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		s.Results = &database.ResultStore{Pool: pool}
		logger.Info("connected to PostgreSQL")
	}

	mux := http.NewServeMux()
	s.Routes(mux)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.LogMiddleware(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", server.Addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("terminating")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("shutdown")
	}
	s.Wait()
	return nil
}

func runHistorian(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		return errors.New("historian needs both redis_addr and database_url")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rc.Close()
	rc.QueueName = cfg.ActionQueue

	pool, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	h := historian.New(rc, &database.ActionStore{Pool: pool}, logger.WithField("service", "historian"))
	h.BatchSize = cfg.HistorianBatchSize
	h.FlushDelay = cfg.HistorianFlush
	h.Inactivity = cfg.HistorianInactivity
	return h.Run(ctx)
}
