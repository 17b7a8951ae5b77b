package main

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/droplink-labs/backend/config"
	"github.com/droplink-labs/backend/internal/client"
	"github.com/droplink-labs/backend/internal/domain"
	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/internal/repository"
	"github.com/droplink-labs/backend/pkg/logger"
	"github.com/droplink-labs/backend/pkg/router"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"github.com/droplink-labs/backend/pkg/xredis"
	"github.com/ethereum/go-ethereum/rpc"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger
	db      *gorm.DB

	redisClient  xredis.Client
	ledgerCaller client.LedgerCaller

	dropRepo           repository.DropRepository
	claimKeyRepo       repository.ClaimKeyRepository
	pendingClaimRepo   repository.PendingClaimRepository
	pendingAccountRepo repository.PendingAccountRepository

	dropDomain  domain.DropDomain
	claimDomain domain.ClaimDomain

	router *router.Router
}

func (s *srv) loadAll() {
	s.ctx = context.Background()
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRedisClient()
	s.loadLedgerCaller()
	s.loadRepos()
	s.loadDomains()
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger()
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) loadDatabase() {
	db, err := gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	s.db = db
	s.ctx = xcontext.WithDB(s.ctx, db)

	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadLedgerCaller() {
	rpcClient, err := rpc.DialContext(s.ctx, s.configs.Ledger.RPCEndpoint)
	if err != nil {
		panic(err)
	}

	s.ledgerCaller = client.NewLedgerCaller(rpcClient)
}

func (s *srv) loadRepos() {
	s.dropRepo = repository.NewDropRepository()
	s.claimKeyRepo = repository.NewClaimKeyRepository()
	s.pendingClaimRepo = repository.NewPendingClaimRepository()
	s.pendingAccountRepo = repository.NewPendingAccountRepository()
}

func (s *srv) loadDomains() {
	nodeID, err := strconv.ParseInt(getEnv("SNOWFLAKE_NODE_ID", "0"), 10, 64)
	if err != nil {
		panic(err)
	}

	snowflakeNode, err := snowflake.NewNode(nodeID)
	if err != nil {
		panic(err)
	}

	s.dropDomain = domain.NewDropDomain(
		s.dropRepo, s.claimKeyRepo, s.pendingClaimRepo, s.ledgerCaller, s.redisClient)
	s.claimDomain = domain.NewClaimDomain(
		s.dropRepo, s.claimKeyRepo, s.pendingClaimRepo, s.pendingAccountRepo,
		s.ledgerCaller, s.redisClient, snowflakeNode)
}
