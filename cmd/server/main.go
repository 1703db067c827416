package main

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"github.com/TimLeitch/ms-contact-sync/config"
	"github.com/TimLeitch/ms-contact-sync/internal/delivery"
	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http"
	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/middleware"
	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/router/handler"
	"github.com/TimLeitch/ms-contact-sync/internal/infra/auth/entra"
	"github.com/TimLeitch/ms-contact-sync/internal/infra/graph"
	logs "github.com/TimLeitch/ms-contact-sync/internal/infra/log"
	"github.com/TimLeitch/ms-contact-sync/internal/infra/persistence/sqlite"
	"github.com/TimLeitch/ms-contact-sync/internal/infra/session"
	"github.com/TimLeitch/ms-contact-sync/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		sqlite.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			sqlite.NewContactRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			session.NewMemoryStore,
			entra.NewOAuthFlow,
			entra.NewTokenSource,
			graph.NewClient,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewDirectoryService,
			impl.NewContactService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewSessionMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewDirectoryHandler,
			handler.NewContactHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
