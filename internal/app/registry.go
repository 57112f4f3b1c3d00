package app

import (
	"database/sql"

	"go-leaveflow/internal/audit"
	"go-leaveflow/internal/auth"
	"go-leaveflow/internal/leave"
	"go-leaveflow/internal/ledger"
	"go-leaveflow/internal/messaging/kafka"
	"go-leaveflow/internal/policy"
	"go-leaveflow/internal/shared/counter"
	"go-leaveflow/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	auditRepo := audit.NewRepository(db)
	counterRepo := counter.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	policyRepo := policy.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)

	// --- Services ---
	recorder := audit.NewRecorder(db, outboxRepo)
	balances := ledger.NewLedger(gormDB)
	userService := user.NewService(userRepo, counterRepo, rdb, recorder)
	authService := auth.NewService(userRepo, userService)
	policyService := policy.NewService(policyRepo, recorder)
	leaveService := leave.NewService(leaveRepo, balances, userService, policyService, recorder)
	auditService := audit.NewService(auditRepo)

	// --- Handlers ---
	auditHandler := audit.NewHandler(auditService)
	authHandler := auth.NewHandler(authService)
	leaveHandler := leave.NewHandler(leaveService)
	policyHandler := policy.NewHandler(policyService)
	userHandler := user.NewHandler(userService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		audit.RegisterRoutes(api, auditHandler)
		auth.RegisterRoutes(api, authHandler)
		leave.RegisterRoutes(api, leaveHandler, rdb)
		policy.RegisterRoutes(api, policyHandler)
		user.RegisterRoutes(api, userHandler)
	}

	return nil
}
