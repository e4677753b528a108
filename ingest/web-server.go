package ingest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/helper"
	"github.com/relloyd/hpingest/logger"
)

// RunnerFactory opens a warehouse session and returns a Runner bound to it.
// The returned func closes the session.
type RunnerFactory func(ctx context.Context) (*Runner, func(), error)

// responseGrace leaves time to write the report of a run that hit its timeout.
const responseGrace = 30 * time.Second

type WebServerConfig struct {
	Addr       string        `errorTxt:"address"`
	Port       int           `errorTxt:"port" mandatory:"yes"`
	RunTimeout time.Duration `errorTxt:"run timeout"`
}

// NewRouter returns the routes served by RunWebServer.
// Each POST /run is cancelled after runTimeout; use 0 for no limit.
func NewRouter(log logger.Logger, newRunner RunnerFactory, runTimeout time.Duration) *mux.Router {
	r := mux.NewRouter()
	r.Path("/health").Methods(http.MethodGet).HandlerFunc(GetHandlerHealth(log))
	r.Path("/plan").Methods(http.MethodGet).HandlerFunc(GetHandlerPlan(log, newRunner))
	r.Path("/plan/{table}").Methods(http.MethodGet).HandlerFunc(GetHandlerPlanTable(log, newRunner))
	r.Path("/run").Methods(http.MethodPost).HandlerFunc(GetHandlerRun(log, newRunner, runTimeout))
	return r
}

// RunWebServer serves the routes of NewRouter until the process is interrupted.
func RunWebServer(log logger.Logger, web *WebServerConfig, newRunner RunnerFactory) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	if err := helper.ValidateStructIsPopulated(web); err != nil {
		return err
	}
	runTimeout := web.RunTimeout
	if runTimeout == 0 {
		runTimeout = 15 * time.Minute // a run can take as long as the slowest COPY INTO.
	}
	srv := &http.Server{
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: runTimeout + responseGrace,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      NewRouter(log, newRunner, runTimeout),
	}
	chanErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			chanErr <- err
		}
		close(chanErr)
	}()
	log.Info(fmt.Sprintf("Listening on http://%v:%v", web.Addr, web.Port))
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C).
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt)
	defer signal.Stop(chanOS)
	select {
	case err := <-chanErr:
		return err
	case <-chanOS:
	}
	log.Info("Shutting down web server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
