// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/current-account/internal/accountdelivery"
	"github.com/go-petr/current-account/internal/accountrepo"
	"github.com/go-petr/current-account/internal/accountservice"
	"github.com/go-petr/current-account/internal/branchcache"
	"github.com/go-petr/current-account/internal/branchrepo"
	"github.com/go-petr/current-account/internal/entryrepo"
	"github.com/go-petr/current-account/internal/middleware"
	"github.com/go-petr/current-account/internal/transferdelivery"
	"github.com/go-petr/current-account/pkg/configpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
//
// Branch lookups are cached in Redis when rdb is not nil.
func New(conn *sql.DB, rdb *redis.Client, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	trManager, err := manager.New(
		trmsql.NewDefaultFactory(conn),
		manager.WithCtxManager(trmcontext.DefaultManager),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create transaction manager: %w", err)
	}

	var branchRepo accountservice.BranchRepo = branchrepo.NewRepoPGS(conn, trmsql.DefaultCtxGetter)
	if rdb != nil {
		branchRepo = branchcache.New(branchRepo, rdb, config.BranchCacheTTL)
	}

	accountRepo := accountrepo.NewRepoPGS(conn, trmsql.DefaultCtxGetter)
	entryRepo := entryrepo.NewRepoPGS(conn, trmsql.DefaultCtxGetter)

	accountService := accountservice.New(branchRepo, accountRepo, entryRepo, trManager)

	engine, err := newEngine(accountService, logger)
	if err != nil {
		return nil, err
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}

// newEngine registers validators and routes all account operations to the service.
func newEngine(accountService *accountservice.Service, logger zerolog.Logger) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("decimal", accountdelivery.ValidDecimal); err != nil {
			return nil, fmt.Errorf("cannot register decimal validator: %w", err)
		}
	}

	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(accountService)

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	accountRoutes := engine.Group("/branches/:branch_id/accounts/:account_id")

	accountRoutes.POST("/deposits", accountHandler.Deposit)
	accountRoutes.POST("/withdrawals", accountHandler.Withdraw)
	accountRoutes.GET("/balance", accountHandler.Balance)
	accountRoutes.GET("/statement", accountHandler.Statement)

	engine.POST("/transfers", transferHandler.Create)

	return engine, nil
}
