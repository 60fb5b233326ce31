package app

import (
	"go.uber.org/fx"

	"github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/cache"
	"github.com/meatline/meatline/internal/config"
	"github.com/meatline/meatline/internal/database"
	"github.com/meatline/meatline/internal/logger"
	"github.com/meatline/meatline/internal/messaging"
	"github.com/meatline/meatline/internal/notify"
	"github.com/meatline/meatline/internal/observability"
	repositoryaccount "github.com/meatline/meatline/internal/repository/account"
	repositorycatalog "github.com/meatline/meatline/internal/repository/catalog"
	repositoryorder "github.com/meatline/meatline/internal/repository/order"
	grpcserver "github.com/meatline/meatline/internal/server/grpc"
	httpserver "github.com/meatline/meatline/internal/server/http"
	serviceauth "github.com/meatline/meatline/internal/service/auth"
	servicecatalog "github.com/meatline/meatline/internal/service/catalog"
	serviceorder "github.com/meatline/meatline/internal/service/order"
	transporthttp "github.com/meatline/meatline/internal/transport/http"
	"github.com/meatline/meatline/internal/worker"
	workerorder "github.com/meatline/meatline/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	notify.Module,
	observability.Module,
	auth.Module,
	repositoryaccount.Module,
	repositorycatalog.Module,
	repositoryorder.Module,
	serviceauth.Module,
	servicecatalog.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
