package main

import (
	"time"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/infra/db"
	infrarepo "app/internal/infra/repository"
	"app/internal/mail"
	"app/internal/middleware"
	"app/internal/server"
	"app/internal/token"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

func main() {
	//.envはローカル用。無ければ環境変数をそのまま使う。
	if err := godotenv.Load(); err != nil {
		log.Infof(".env not loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// repository
	userRepo := infrarepo.NewUserGormRepository(gormDB)
	refreshRepo := infrarepo.NewRefreshTokenGormRepository(gormDB)
	verificationRepo := infrarepo.NewVerificationTokenGormRepository(gormDB)
	txManager := infrarepo.NewTxManagerGorm(gormDB)

	clock := realClock{}
	idGen := uuidGenerator{}

	codec := token.NewCodec(cfg.TokenSecretKey, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL(), clock.Now)
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()
	mailSender := mail.NewSMTPSender(cfg)
	authValidator := validator.NewAuthValidator()

	// usecase
	verificationUC := usecase.NewVerificationUsecase(verificationRepo, txManager, idGen, clock, cfg.VerificationTokenTTL())
	authUC := usecase.NewAuthUsecase(
		userRepo,
		refreshRepo,
		txManager,
		authValidator,
		hasher,
		verifier,
		codec,
		idGen,
		clock,
		mailSender,
		verificationUC,
		cfg.MailFromName,
		cfg.AppBaseURL,
	)

	// handler
	authHandler := handler.NewAuthHandler(authUC, verificationUC, cfg.GoEnv == "prod")
	guard := middleware.AuthJWT(codec)

	e := server.New()
	server.RegisterRoutes(e, authHandler, guard)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
