package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"careermate/config"
	"careermate/internal/application/usecase"
	"careermate/internal/infrastructure/assistant"
	"careermate/internal/infrastructure/cache"
	"careermate/internal/infrastructure/repository"
	"careermate/internal/infrastructure/security"
	"careermate/internal/infrastructure/storage"
	"careermate/internal/middleware"
	grpc_server "careermate/internal/transport/grpc"
	handlers "careermate/internal/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type store struct {
	users        usecase.UserRepository
	customers    usecase.CustomerRepository
	reviews      usecase.ReviewRepository
	certificates usecase.CertificateRepository
	ping         grpc_server.Pinger
	close        func(context.Context) error
}

func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	switch cfg.StorageDriver {
	case "postgres":
		db, err := repository.OpenPostgres(repository.PostgresConfig{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Name:     cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		}.DSN())
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(db); err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &store{
			users:        repository.NewUserRepository(db),
			customers:    repository.NewCustomerRepository(db),
			reviews:      repository.NewReviewRepository(db),
			certificates: repository.NewCertificateRepository(db),
			ping:         grpc_server.PingFunc(func(ctx context.Context) error { return repository.PingPostgres(ctx, db) }),
			close:        func(context.Context) error { return sqlDB.Close() },
		}, nil

	case "mongo":
		ms, err := repository.ConnectMongo(ctx, repository.MongoConfig{
			UsersURI:     cfg.MongoUsersURI,
			CustomersURI: cfg.MongoCustomersURI,
			UsersDB:      cfg.MongoUsersDB,
			CustomersDB:  cfg.MongoCustomersDB,
		})
		if err != nil {
			return nil, err
		}
		return &store{
			users:        ms.Users(),
			customers:    ms.Customers(),
			reviews:      ms.Reviews(),
			certificates: ms.Certificates(),
			ping:         ms,
			close:        ms.Disconnect,
		}, nil

	case "memory":
		mem := repository.NewMemoryStore()
		return &store{
			users:        mem.Users(),
			customers:    mem.Customers(),
			reviews:      mem.Reviews(),
			certificates: mem.Certificates(),
			ping:         mem,
			close:        func(context.Context) error { return nil },
		}, nil
	}
	return nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
}

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		log.Fatalf("ACCESS_SECRET and REFRESH_SECRET must be set")
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StorageDriver, err)
	}
	log.Printf("Using %s storage", cfg.StorageDriver)

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis at", cfg.RedisAddr)

	sessions := cache.NewSessionStore(rdb)
	summaries := cache.NewReviewSummaryCache(rdb, cfg.ReviewSummaryTTL)
	rateLimiter := middleware.NewRateLimiter(rdb)

	hasher := security.NewPasswordHasher()
	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	gemini, err := assistant.NewGemini(ctx, assistant.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY is not set, /api/ai/chat will fail")
	}

	avatars, err := storage.NewAvatarStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}

	authUseCase := usecase.NewAuthUseCase(st.users, st.customers, sessions, hasher, tokenManager)
	profileUseCase := usecase.NewProfileUseCase(st.users, st.customers, hasher, avatars)
	enrollmentUseCase := usecase.NewEnrollmentUseCase(st.customers)
	progressUseCase := usecase.NewProgressUseCase(st.customers, cfg.QuizPassingRatio)
	certificateUseCase := usecase.NewCertificateUseCase(st.customers, st.certificates, security.NewCodeGenerator(), usecase.CertificatePolicy{
		PassingRatio:    cfg.QuizPassingRatio,
		AllowDuplicates: cfg.AllowDuplicateCertificates,
	})
	reviewUseCase := usecase.NewReviewUseCase(st.customers, st.reviews, summaries, cfg.AllowDuplicateReviews)
	assistantUseCase := usecase.NewAssistantUseCase(gemini)

	router := handlers.NewRouter(handlers.Handlers{
		Auth: handlers.NewAuthHandler(authUseCase, handlers.CookieConfig{
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
			MaxAge: cfg.RefreshTTL,
		}),
		Profile:     handlers.NewProfileHandler(profileUseCase),
		Course:      handlers.NewCourseHandler(enrollmentUseCase, progressUseCase),
		Certificate: handlers.NewCertificateHandler(certificateUseCase),
		Review:      handlers.NewReviewHandler(reviewUseCase),
		AI:          handlers.NewAIHandler(assistantUseCase),
	}, authUseCase, rateLimiter, handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      avatars.Root(),
	})

	healthServer := grpc_server.NewHealthServer(cfg.HealthInterval, map[string]grpc_server.Pinger{
		cfg.StorageDriver: st.ping,
		"redis":           grpc_server.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	})
	go healthServer.Run(ctx)

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	go func() {
		log.Printf("gRPC health server is running on port %s...", cfg.GRPCPort)
		if err := healthServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("CareerMate API running on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	healthServer.GracefulStop()
	if err := rdb.Close(); err != nil {
		log.Printf("Redis close: %v", err)
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Printf("Store close: %v", err)
	}
}
