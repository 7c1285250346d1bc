package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/goliatone/go-repository-audit/internal/config"
	"github.com/goliatone/go-repository-audit/internal/httpapi"
	"github.com/goliatone/go-repository-audit/internal/menu"
	"github.com/goliatone/go-repository-audit/internal/metrics"
	"github.com/goliatone/go-repository-audit/internal/storage"
	"github.com/goliatone/go-repository-audit/pkg/di"
	repository "github.com/goliatone/go-repository-bun"
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Could not load configuration")
	}
	if err := cfg.Log.Configure(log.StandardLogger()); err != nil {
		log.WithError(err).Fatal("Could not configure logging")
	}

	if len(os.Args) == 3 && os.Args[1] == "token" {
		issuer := httpapi.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TTL)
		token, err := issuer.Issue(audit.Actor(os.Args[2]))
		if err != nil {
			log.WithError(err).Fatal("Could not issue token")
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
	log.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := log.StandardLogger()

	db, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	log.WithField("driver", cfg.DB.Driver).Info("Connected to the database")

	if cfg.Migrations.Enabled {
		if err := storage.Migrate(db, cfg.DB.Driver, cfg.Migrations.Path, logger); err != nil {
			return err
		}
	}

	m := metrics.New()

	// Cart quantity changes are not audited.
	registry := audit.DefaultRegistry().Skip("cart_item.Update")

	container, err := di.NewContainer(cfg.Cache.CacheConfig(),
		di.WithLogger(logger),
		di.WithRegistry(registry),
		di.WithStampHook(m.StampHook()),
		di.WithInvalidationHook(m.InvalidationHook()),
	)
	if err != nil {
		return err
	}

	dishes, cart := buildServices(db, container, logger)

	e := httpapi.NewEcho(logger)
	issuer := httpapi.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TTL)
	server := httpapi.NewServer(dishes, cart,
		httpapi.WithLogger(logger),
		httpapi.WithMetricsHandler(m.Handler()),
		httpapi.WithHealthCheck(db.PingContext),
	)
	server.Register(e, httpapi.AuthMiddleware(issuer, cfg.Auth.Header, logger))

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("HTTP server is starting")
		if err := e.Start(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func buildServices(db *bun.DB, container *di.Container, logger log.FieldLogger) (*menu.DishService, *menu.CartService) {
	dishRecords := di.NewRepository[*menu.Dish](container, repository.NewRepository[*menu.Dish](db, menu.DishHandlers()))
	flavorRecords := di.NewRepository[*menu.DishFlavor](container, repository.NewRepository[*menu.DishFlavor](db, menu.FlavorHandlers()))
	setmealRecords := di.NewRepository[*menu.Setmeal](container, repository.NewRepository[*menu.Setmeal](db, menu.SetmealHandlers()))
	linkRecords := di.NewRepository[*menu.SetmealDish](container, repository.NewRepository[*menu.SetmealDish](db, menu.SetmealDishHandlers()))
	cartRecords := di.NewRepository[*menu.CartItem](container, repository.NewRepository[*menu.CartItem](db, menu.CartItemHandlers()))

	dishStore := menu.NewDishStore(dishRecords)
	setmealStore := menu.NewSetmealStore(setmealRecords, linkRecords)

	dishes := menu.NewDishService(
		dishStore,
		menu.NewFlavorStore(flavorRecords),
		setmealStore,
		container.CacheService(),
		container.Invalidator(),
		menu.WithDishLogger(logger.WithField("component", "dish")),
	)
	cart := menu.NewCartService(menu.NewCartStore(cartRecords), dishStore, setmealStore,
		logger.WithField("component", "cart"))
	return dishes, cart
}
