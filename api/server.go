package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// RunServerWithContext serves handler on listenAddr until ctx is canceled,
// then shuts the server down gracefully
func RunServerWithContext(ctx context.Context, listenAddr string, handler http.Handler) error {
	server := &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("Starting flowpath API server on %s", listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Context canceled. Shutting down flowpath API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Infof("Server forced to shutdown: %v", err)
			return err
		}
		log.Info("Flowpath API server stopped gracefully.")
		return nil

	case err := <-serverErrors:
		log.Errorf("Server error: %v", err)
		return err
	}
}
