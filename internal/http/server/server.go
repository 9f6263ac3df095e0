package server

import (
	"context"
	"errors"
	"fmt"
	"jsonstore/internal/config"
	"jsonstore/internal/http/handlers/data"
	"jsonstore/internal/http/handlers/emailverify"
	"jsonstore/internal/http/handlers/query"
	"jsonstore/internal/http/handlers/store"
	"jsonstore/internal/http/middleware"
	"jsonstore/internal/models"
	utils "jsonstore/internal/utils/http_errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
)

const (
	storePath       = "/api/json/store"
	dataPath        = "/api/json/data"
	queryPath       = "/api/json/query"
	emailVerifyPath = "/api/email-verification"
)

func StartServer(
	ctx context.Context,
	cfg *config.HTTPServer,
	log *slog.Logger,
	storeService StoreService,
	emailVerifyService EmailVerifyService,
	adminToken string,
) error {
	r := NewRouter(log, cfg.MaxBodySize, storeService, emailVerifyService, adminToken)

	srv := &http.Server{
		Addr:         cfg.Address,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
		Handler:      r,
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("server closed gracefully")
			} else {
				log.Error("could not start server:", "error", err)
				errChan <- err
			}
		}
	}()
	select {
	case <-ctx.Done():
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down server", "error", err)
			return err
		}
		log.Info("server exited gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

// NewRouter matches on the escaped path so that percent-encoded slashes in an
// xid or pointer segment survive routing. Handlers receive decoded values.
func NewRouter(log *slog.Logger, maxBodySize int64, st StoreService, ev EmailVerifyService, adminToken string) *mux.Router {
	r := mux.NewRouter().UseEncodedPath().SkipClean(true)

	r.Use(middleware.Logger(log), middleware.BodyLimit(maxBodySize))

	setupStoreRoutes(r, log, st)
	setupEmailVerifyRoutes(r, log, ev, adminToken)

	// Not found
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	// Not allowed
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusMethodNotAllowed, models.ErrMethodNotAllowed.Error())
	})

	return r
}

func setupStoreRoutes(r *mux.Router, log *slog.Logger, st StoreService) {
	// POST item
	r.HandleFunc(storePath, func(w http.ResponseWriter, r *http.Request) {
		store.Create(r.Context(), log, w, r, st)
	}).Methods(http.MethodPost)

	// GET item
	r.HandleFunc(storePath+"/{xid}", withVars(log, func(w http.ResponseWriter, r *http.Request, xid, _ string) {
		store.Get(r.Context(), log, w, r, xid, st)
	})).Methods(http.MethodGet)

	// PUT item
	r.HandleFunc(storePath+"/{xid}", withVars(log, func(w http.ResponseWriter, r *http.Request, xid, _ string) {
		store.Update(r.Context(), log, w, r, xid, st)
	})).Methods(http.MethodPut)

	// DELETE item
	r.HandleFunc(storePath+"/{xid}", withVars(log, func(w http.ResponseWriter, r *http.Request, xid, _ string) {
		store.Delete(r.Context(), log, w, r, xid, st)
	})).Methods(http.MethodDelete)

	// GET data
	r.HandleFunc(dataPath+"/{xid}{pointer:.*}", withVars(log, func(w http.ResponseWriter, r *http.Request, xid, pointer string) {
		data.Get(r.Context(), log, w, r, xid, pointer, st)
	})).Methods(http.MethodGet)

	// POST data
	r.HandleFunc(dataPath+"/{xid}{pointer:.*}", withVars(log, func(w http.ResponseWriter, r *http.Request, xid, pointer string) {
		data.Set(r.Context(), log, w, r, xid, pointer, st)
	})).Methods(http.MethodPost)

	// DELETE data
	r.HandleFunc(dataPath+"/{xid}{pointer:.*}", withVars(log, func(w http.ResponseWriter, r *http.Request, xid, pointer string) {
		data.Delete(r.Context(), log, w, r, xid, pointer, st)
	})).Methods(http.MethodDelete)

	// GET query
	r.HandleFunc(queryPath+"/{xid}{pointer:.*}", withVars(log, func(w http.ResponseWriter, r *http.Request, xid, pointer string) {
		query.Get(r.Context(), log, w, r, xid, pointer, st)
	})).Methods(http.MethodGet)
}

func setupEmailVerifyRoutes(r *mux.Router, log *slog.Logger, ev EmailVerifyService, adminToken string) {
	public := r.PathPrefix(emailVerifyPath + "/public").Subrouter()

	// GET public key
	public.HandleFunc("/public-key", func(w http.ResponseWriter, r *http.Request) {
		emailverify.PublicKey(r.Context(), log, w, r, ev)
	}).Methods(http.MethodGet)

	// POST send email
	public.HandleFunc("/send-email", func(w http.ResponseWriter, r *http.Request) {
		emailverify.SendEmail(r.Context(), log, w, r, ev)
	}).Methods(http.MethodPost)

	// GET verify token
	public.HandleFunc("/verify", func(w http.ResponseWriter, r *http.Request) {
		emailverify.Verify(r.Context(), log, w, r, ev)
	}).Methods(http.MethodGet)

	// POST register
	public.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		emailverify.Register(r.Context(), log, w, r, ev)
	}).Methods(http.MethodPost)

	// POST update email
	public.HandleFunc("/update-email", func(w http.ResponseWriter, r *http.Request) {
		emailverify.UpdateEmail(r.Context(), log, w, r, ev)
	}).Methods(http.MethodPost)

	protected := r.PathPrefix(emailVerifyPath).Subrouter()

	protected.Use(middleware.Admin(log, adminToken))

	// POST create token
	protected.HandleFunc("/create-token", func(w http.ResponseWriter, r *http.Request) {
		emailverify.CreateToken(r.Context(), log, w, r, ev)
	}).Methods(http.MethodPost)

	// POST send email for a user
	protected.HandleFunc("/send-email", func(w http.ResponseWriter, r *http.Request) {
		emailverify.SendUserEmail(r.Context(), log, w, r, ev)
	}).Methods(http.MethodPost)
}

// withVars percent-decodes the xid and pointer route variables.
func withVars(log *slog.Logger, h func(w http.ResponseWriter, r *http.Request, xid, pointer string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		xid, err := url.PathUnescape(vars["xid"])
		if err != nil {
			log.Warn("failed to decode xid", slog.String("error", err.Error()))
			utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidParams, err))
			return
		}

		pointer, err := url.PathUnescape(vars["pointer"])
		if err != nil {
			log.Warn("failed to decode pointer", slog.String("error", err.Error()))
			utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidPointer, err))
			return
		}

		h(w, r, xid, pointer)
	}
}
