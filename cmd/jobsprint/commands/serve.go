package commands

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/handlers"
	"github.com/justsurfingit/jobsprint/internal/services"
)

// ServeAction starts the HTTP API and, when configured, the scheduled snipes.
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()
	log := app.Logger

	if app.Config.AutoSnipeEnabled() {
		auto := services.NewAutoSniper(app.Config.AutoSnipe, app.Sniper, app.Queue, log)
		if err := auto.Start(app.Config.AutoSnipe.Schedule); err != nil {
			return err
		}
		defer auto.Stop()
	}

	if app.Config.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.Handlers{
		Jobs:      handlers.NewJobHandler(app.Sniper, log),
		Queue:     handlers.NewQueueHandler(app.Queue, log),
		Apply:     handlers.NewApplyHandler(app.Apply, log),
		Interview: handlers.NewInterviewHandler(app.Interview, log),
	}, log)

	port := app.Config.Port
	if p := cmd.String("port"); p != "" {
		port = p
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
