package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geohash-service/api"
	"geohash-service/cache"
	"geohash-service/config"
	"geohash-service/database"
	"geohash-service/geoindex"
	"geohash-service/search"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the geohash and venue search HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		technique, err := geoindex.ParseTechnique(cfg.Search.Technique, geoindex.GeohashingTechnique)
		if err != nil {
			return fmt.Errorf("search.technique: %w", err)
		}

		db, err := database.Open(ctx, cfg.DB.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := search.NewService(
			database.NewVenueRepository(db),
			cache.NewVenueCache(rdb, cfg.Redis.CellPrecision),
			search.Options{
				Precision:        cfg.Server.DefaultPrecision,
				DefaultTechnique: technique,
				MaxRetries:       cfg.Search.MaxRetries,
				InitialRadius:    cfg.Search.InitialRadius,
				DefaultDistance:  cfg.Search.DefaultDistance,
			},
		)
		n, err := svc.Warm(ctx)
		if err != nil {
			return fmt.Errorf("loading venues: %w", err)
		}
		log.Printf("Indexed %d venues", n)

		handler := api.NewHandler(svc, cfg.Server.DefaultPrecision, cfg.Server.MaxPrecision)
		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           api.RegisterRoutes(handler, os.Stdout),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Server started on %s", cfg.Server.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
