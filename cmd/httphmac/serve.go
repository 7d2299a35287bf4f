package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vitalvas/httphmac/config"
	"github.com/vitalvas/httphmac/hmacauth"
	"github.com/vitalvas/httphmac/keystore"
	"github.com/vitalvas/httphmac/logger"
	"github.com/vitalvas/httphmac/muxhandlers"
	"github.com/vitalvas/httphmac/replay"
)

var errNoKeys = errors.New("HTTPHMAC_KEYS_FILE or HTTPHMAC_KEYS_DB must be set")

// runServe starts a verifying echo server and blocks until ctx is done.
func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("serve takes no arguments, use HTTPHMAC_* variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewConsole(cfg.LogLevel, stderr)

	handler, closeFn, err := newServer(cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", cfg.Listen).
			Int("min_version", cfg.MinVersion).
			Int("max_version", cfg.MaxVersion).
			Bool("sign_responses", cfg.SignResponses).
			Msg("server starting")

		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// newServer wires the key store, replay guard and middleware into a
// router. The returned func releases the databases.
func newServer(cfg *config.Config, log zerolog.Logger) (http.Handler, func() error, error) {
	var closers []func() error

	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}

		return errors.Join(errs...)
	}

	keys, err := openKeys(cfg)
	if err != nil {
		return nil, nil, err
	}

	if c, ok := keys.(io.Closer); ok {
		closers = append(closers, c.Close)
	}

	// Nonces must outlive both sides of the timestamp window.
	ttl := 2 * cfg.ReplayWindow

	var guard replay.Guard = replay.NewMemory(ttl)
	if cfg.NonceDB != "" {
		db, err := replay.OpenSQLite(cfg.NonceDB, ttl)
		if err != nil {
			closeAll()
			return nil, nil, err
		}

		closers = append(closers, db.Close)
		guard = db
	}

	var signers []hmacauth.Signer
	for v := cfg.MinVersion; v <= cfg.MaxVersion; v++ {
		s, err := newSigner(v, cfg.ReplayWindow)
		if err != nil {
			closeAll()
			return nil, nil, err
		}

		signers = append(signers, s)
	}

	mw, err := hmacauth.Middleware(hmacauth.MiddlewareConfig{
		Identifier:    hmacauth.NewSignerIdentifier(signers...),
		Secrets:       keys,
		Nonces:        guard,
		SignResponses: cfg.SignResponses,
		Logger:        &log,
	})
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	limit, err := muxhandlers.RequestSizeLimitMiddleware(muxhandlers.RequestSizeLimitConfig{MaxBytes: cfg.MaxBodyBytes})
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	router := mux.NewRouter()
	router.Use(muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{Logger: &log}))
	router.Use(muxhandlers.AccessLogMiddleware(log))
	router.Use(muxhandlers.RecoveryMiddleware(log))
	router.Use(limit)

	router.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	api := router.PathPrefix("/").Subrouter()
	api.Use(mw)
	api.PathPrefix("/").HandlerFunc(echo)

	return router, closeAll, nil
}

func openKeys(cfg *config.Config) (keystore.Store, error) {
	switch {
	case cfg.KeysFile != "":
		return keystore.LoadFile(cfg.KeysFile)
	case cfg.KeysDB != "":
		return keystore.OpenSQLite(cfg.KeysDB)
	default:
		return nil, errNoKeys
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type echoResponse struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Query   string `json:"query,omitempty"`
	KeyID   string `json:"key_id"`
	Version int    `json:"version"`
	Body    string `json:"body,omitempty"`
}

// echo describes the authenticated request back to the client.
func echo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, _ := hmacauth.AuthFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(echoResponse{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		KeyID:   info.KeyID,
		Version: info.Version,
		Body:    string(body),
	})
}
