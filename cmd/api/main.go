package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	fsinfra "storefront/internal/infra/firestore"
	"storefront/internal/infra/filestore"
	"storefront/internal/infra/mail"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// .env は無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	//Repository生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)

	var (
		cartBase     repository.CartItemRepository
		activityRepo repository.ActivityRepository
	)
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		fsClient, err := fsinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return err
		}
		defer fsClient.Close()
		cartBase = fsinfra.NewCartFirestoreRepository(fsClient)
		activityRepo = fsinfra.NewActivityFirestoreRepository(fsClient)
	default:
		cartBase = infraRepo.NewCartGormRepository(gormDB)
		activityRepo = infraRepo.NewActivityGormRepository(gormDB)
	}
	cartRepo := cache.NewCachedCartRepository(cartBase, rdb, logger)
	sessionRepo := cache.NewSessionRedisRepository(rdb)
	counterRepo := cache.NewCounterRedisRepository(rdb)

	dataRepo, err := filestore.NewUserDataFileRepository(cfg.UserDataDir)
	if err != nil {
		return err
	}

	var mailer usecase.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = mail.NewSendGridClient(cfg.SendGridAPIKey, cfg.MailFrom, "Storefront", logger)
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, activityRepo, hasher, idGen, clock, logger)
	loginUC := auth.NewLoginUsecase(userRepo, sessionRepo, activityRepo, verifier, issuer, idGen, clock, cfg.SessionTTL, logger)
	logoutUC := auth.NewLogoutUsecase(userRepo, sessionRepo, activityRepo, clock, logger)
	sessionUC := auth.NewSessionUsecase(userRepo, sessionRepo)
	forceLogoutUC := auth.NewForceLogoutUsecase(userRepo, sessionRepo)

	productUC := usecase.NewProductUsecase(productRepo, uuid.NewString)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo)
	activityUC := usecase.NewActivityUsecase(activityRepo, nil)
	analyticsUC := usecase.NewAnalyticsUsecase(counterRepo, activityRepo, userRepo, logger, nil)
	userDataUC := usecase.NewUserDataUsecase(dataRepo, mailer, cfg.MailTo, logger, nil)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo)

	//Handler生成
	h := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, logoutUC, sessionUC, cfg.CookieSecure()),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminUser:    handler.NewAdminUserHandler(adminUserUC, forceLogoutUC),
		Cart:         handler.NewCartHandler(cartUC),
		Wishlist:     handler.NewWishlistHandler(wishlistUC),
		Activity:     handler.NewActivityHandler(activityUC, analyticsUC),
		Analytics:    handler.NewAnalyticsHandler(analyticsUC),
		UserData:     handler.NewUserDataHandler(userDataUC),
	}
	deps := handler.AuthDeps{Cfg: cfg, Sessions: sessionRepo, Users: userRepo}
	e := server.New(cfg, logger, h, deps)

	//Server起動
	addr := cfg.Port
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}

	return server.Start(ctx, e, addr, logger)
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lv}))
}
