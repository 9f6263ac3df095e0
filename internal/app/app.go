package app

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"jsonstore/internal/cache/redis"
	"jsonstore/internal/config"
	"jsonstore/internal/dbs/postgres"
	"jsonstore/internal/mailer"
	cachejsonstorerepo "jsonstore/internal/repositories/cache/jsonstore"
	cachetokensrepo "jsonstore/internal/repositories/cache/tokens"
	jsonstorerepo "jsonstore/internal/repositories/db/jsonstore"
	userrepo "jsonstore/internal/repositories/db/user"
	"jsonstore/internal/repositories/storage"
	keyrepo "jsonstore/internal/repositories/storage/key"
	emailverifyservice "jsonstore/internal/services/emailverify"
	jsonstoreservice "jsonstore/internal/services/jsonstore"
	userservice "jsonstore/internal/services/user"
	"jsonstore/internal/token"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

type App struct {
	JSONStoreService   *jsonstoreservice.JSONStoreService
	UserService        *userservice.UserService
	EmailVerifyService *emailverifyservice.EmailVerifyService

	db    *sqlx.DB
	cache *redis.Client
}

func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	key, err := loadSigningKey(log, keyrepo.NewRepository(cfg.Token.KeyPath))
	if err != nil {
		log.Error("failed to load signing key", "err", err)
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	db, err := postgres.New(ctx, postgres.Config{
		Addr:     cfg.DB.Addr,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.DB,
		SSLMode:  cfg.DB.SSLMode})
	if err != nil {
		log.Error("failed connect to db", "err", err)
		return nil, fmt.Errorf("failed connect to db: %w", err)
	}

	cache, err := redis.New(ctx, redis.Config{Addr: cfg.Cache.Addr, Password: cfg.Cache.Password, DB: cfg.Cache.DB})
	if err != nil {
		_ = db.Close()
		log.Error("failed connect to cache", "err", err)
		return nil, fmt.Errorf("failed connect to cache: %w", err)
	}

	userRepo := userrepo.NewRepository(db)

	userService := userservice.New(log, userRepo, userRepo, userRepo)

	itemRepo := jsonstorerepo.NewRepository(db)

	itemCacheRepo := cachejsonstorerepo.New(cache, cfg.Cache.ItemsTTL)

	jsonStoreService := jsonstoreservice.New(log, itemRepo, itemCacheRepo)

	tokenCacheRepo := cachetokensrepo.New(cache, cfg.Cache.TokensTTL)

	signer := token.NewSigner(key, cfg.Token.Issuer, cfg.Token.TTL)

	emailVerifyService := emailverifyservice.New(log,
		emailverifyservice.Config{
			BaseURL:            cfg.EmailVerification.BaseURL,
			VerifyPath:         cfg.EmailVerification.VerifyPath,
			PublicRegistration: cfg.EmailVerification.PublicRegistration,
		},
		signer, tokenCacheRepo, userService, userService, userService, mailer.NewLogMailer(log))

	return &App{
		JSONStoreService:   jsonStoreService,
		UserService:        userService,
		EmailVerifyService: emailVerifyService,
		db:                 db,
		cache:              cache,
	}, nil
}

func (a *App) Close() error {
	return errors.Join(a.db.Close(), a.cache.Close())
}

type keyStore interface {
	Load() ([]byte, error)
	Save(pemData []byte) error
}

// loadSigningKey reads the token signing key, creating and persisting a new
// one on first start.
func loadSigningKey(log *slog.Logger, ks keyStore) (*ecdsa.PrivateKey, error) {
	data, err := ks.Load()
	if err == nil {
		return token.ParsePrivateKey(data)
	}
	if !errors.Is(err, storage.ErrKeyNotFound) {
		return nil, err
	}

	log.Info("no signing key found, generating a new one")

	key, err := token.GenerateKey()
	if err != nil {
		return nil, err
	}

	data, err = token.EncodePrivateKey(key)
	if err != nil {
		return nil, err
	}

	if err = ks.Save(data); err != nil {
		return nil, err
	}

	return key, nil
}
