package app

import (
	"database/sql"
	"time"

	"go-workforce/internal/activity"
	"go-workforce/internal/approval"
	"go-workforce/internal/balance"
	"go-workforce/internal/chain"
	"go-workforce/internal/config"
	"go-workforce/internal/conflict"
	"go-workforce/internal/employee"
	"go-workforce/internal/expense"
	"go-workforce/internal/leave"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/middleware"
	"go-workforce/internal/rbac"
	"go-workforce/internal/rbac/infra"
	"go-workforce/internal/request"
	"go-workforce/internal/shared/counter"
	"go-workforce/internal/ticket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	reg prometheus.Registerer,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	activityRepo := activity.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	chainRepo := chain.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	expenseRepo := expense.NewRepository(gormDB)
	ticketRepo := ticket.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)

	// --- Services ---
	recorder := activity.NewOutboxRecorder(outboxRepo)
	activityService := activity.NewService(activityRepo, logger)
	balanceService := balance.NewService(db, balanceRepo, leaveRepo, employeeRepo, logger)
	conflictService := conflict.NewService(employeeRepo, leaveRepo, conflict.Policy{
		CriticalCount: cfg.Approval.ConflictCriticalCount,
		CriticalRatio: cfg.Approval.ConflictCriticalRatio,
	}, logger)
	leaveService := leave.NewService(db, leaveRepo, counterRepo, employeeRepo, balanceService, conflictService, recorder, logger)
	expenseService := expense.NewService(db, expenseRepo, counterRepo, employeeRepo, recorder, logger)
	ticketService := ticket.NewService(db, ticketRepo, counterRepo, employeeRepo, recorder, logger)
	chainService := chain.NewService(db, chainRepo, rdb, cfg.Approval.ChainCacheTTL, logger)

	kinds := approval.Registry{
		request.KindLeave:   {Store: leaveRepo, Lifecycle: leave.Lifecycle, Advisor: leaveService},
		request.KindExpense: {Store: expenseRepo, Lifecycle: expense.Lifecycle, Reimburser: expenseRepo},
		request.KindTicket:  {Store: ticketRepo, Lifecycle: ticket.Lifecycle, Starter: ticketRepo},
	}
	approvalService := approval.NewService(
		kinds,
		chain.NewResolver(chainService, cfg.Approval.ChainsEnabled, logger),
		recorder,
		approval.Options{
			BulkMaxItems: cfg.Approval.BulkMaxItems,
			Metrics:      approval.NewMetrics(reg),
			Directory:    employeeRepo,
		},
		logger,
	)

	// --- Handlers ---
	rbacHandler := rbac.NewHandler(rbacService, logger)
	activityHandler := activity.NewHandler(activityService, logger)
	balanceHandler := balance.NewHandler(balanceService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	expenseHandler := expense.NewHandler(expenseService, logger)
	ticketHandler := ticket.NewHandler(ticketService, logger)
	chainHandler := chain.NewHandler(chainService, logger)
	approvalHandler := approval.NewHandler(approvalService, logger)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	bulkLimit := rate.Every(time.Minute / time.Duration(cfg.Approval.BulkRatePerMinute))

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.ContextLogger(logger))
	{
		rbac.RegisterRoutes(api, rbacHandler)
		activity.RegisterRoutes(api, activityHandler, rbacService)
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService)
		expense.RegisterRoutes(api, expenseHandler, rbacService)
		ticket.RegisterRoutes(api, ticketHandler, rbacService)
		chain.RegisterRoutes(api, chainHandler, rbacService)
		approval.RegisterRoutes(api, approvalHandler, rbacService,
			middleware.RateLimitByUser(bulkLimit, cfg.Approval.BulkBurst),
			middleware.Idempotency(rdb, cfg.IdempotencyTTL),
		)
	}

	return nil
}
