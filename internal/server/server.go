package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fable/internal/ai/component"
	"fable/internal/config"
	"fable/internal/handler"
	storyHandler "fable/internal/handler/story"
	"fable/internal/pkg/ark"
	"fable/internal/pkg/cache"
	"fable/internal/pkg/mongodb"
	"fable/internal/pkg/storytools"
	"fable/internal/pkg/storytools/providers"
	storyrepo "fable/internal/repository/story"
	"fable/internal/server/middleware"
	storysvc "fable/internal/service/story"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 初始化 MongoDB (可选)
	var mongoClient *mongodb.Client
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			// 创建索引
			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	// 设置路由
	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() error {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 场景切分器：配置了文本后端走 LLM，否则用确定性 mock
	splitter, err := s.buildSplitter()
	if err != nil {
		return err
	}

	// 插图器：配置了图片后端走 Ark，否则用占位图
	illustrator, err := s.buildIllustrator()
	if err != nil {
		return err
	}

	// 故事仓库（依赖 MongoDB）
	var repo storyrepo.StoryRepository
	if s.mongo != nil {
		repo = storyrepo.NewStoryRepo(s.mongo.Database())
	}

	storyService := storysvc.NewStoryService(repo, splitter, illustrator, s.redis)
	storyHdl := storyHandler.NewHandler(storyService)

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		// 插图接口不依赖持久化，始终可用
		v1.POST("/generate/image", storyHdl.GenerateImage)

		// 故事接口需要持久化
		if s.mongo != nil {
			v1.POST("/generate/story", storyHdl.GenerateStory)
			v1.POST("/generate/all", storyHdl.GenerateAll)
			v1.GET("/stories/:id", storyHdl.GetStory)
		} else {
			log.Warn().Msg("MongoDB not configured, story endpoints disabled")
		}
	}

	return nil
}

// buildSplitter 根据配置选择场景切分器
func (s *Server) buildSplitter() (storytools.Splitter, error) {
	if s.cfg.AI.APIKey == "" {
		log.Warn().Msg("text backend not configured, using deterministic scene splitter")
		return storytools.NewMockSplitter(), nil
	}

	chatModel, err := component.NewChatModel(context.Background(), &s.cfg.AI)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("provider", s.cfg.AI.Provider).
		Str("model", s.cfg.AI.Model).
		Msg("initialized text backend for scene splitting")

	return storytools.NewLLMSplitter(providers.NewEinoProvider(chatModel)), nil
}

// buildIllustrator 根据配置选择插图器
func (s *Server) buildIllustrator() (storytools.Illustrator, error) {
	if s.cfg.Image.APIKey == "" {
		log.Warn().Msg("image backend not configured, using placeholder illustrator")
		return storytools.NewPlaceholderIllustrator(), nil
	}

	imageClient, err := ark.NewImageClient(&s.cfg.Image)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("model", s.cfg.Image.Model).
		Str("size", s.cfg.Image.Size).
		Msg("initialized image backend for illustration")

	return storytools.NewImageIllustrator(providers.NewArkImageProvider(imageClient)), nil
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 关闭连接
		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
