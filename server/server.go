package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/kasuboski/simulcast/pkg/apperr"
	"github.com/kasuboski/simulcast/pkg/manager"
	"github.com/kasuboski/simulcast/pkg/metadata"
	"github.com/kasuboski/simulcast/pkg/reconcile"
	"github.com/kasuboski/simulcast/pkg/schedule"
	"github.com/kasuboski/simulcast/pkg/settings"
	"go.uber.org/zap"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_manager.go github.com/kasuboski/simulcast/server JobState,Manager

// Manager is what the api serves
type Manager interface {
	PollFeed(ctx context.Context) ([]manager.Release, error)
	Acquire(ctx context.Context, rawTitle string) error
	Track(ctx context.Context, name string) (bool, error)
	Untrack(ctx context.Context, name string) (int, error)
	Tracked(ctx context.Context) []manager.TrackedSeries
	Downloads(ctx context.Context) ([]reconcile.Record, error)
	DeleteDownload(ctx context.Context, filename string) (reconcile.Record, error)
	Schedule(ctx context.Context) (schedule.Schedule, error)
	NextAiring(ctx context.Context) (schedule.Airing, bool, error)
	Metadata(ctx context.Context, rawTitle string) metadata.Entry
	Settings() settings.Settings
	UpdateSettings(ctx context.Context, next settings.Settings) error
}

type JobState interface {
	State() map[manager.JobType]manager.Result
}

type GenericResponse struct {
	Error    string `json:"error,omitempty"`
	Response any    `json:"response"`
}

// Server houses the dependencies of the http api
type Server struct {
	baseLogger *zap.SugaredLogger
	manager    Manager
	jobs       JobState
}

// New creates a new api server
func New(logger *zap.SugaredLogger, manager Manager, jobs JobState) Server {
	return Server{
		baseLogger: logger,
		manager:    manager,
		jobs:       jobs,
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, err error) error {
	return writeResponse(w, status, GenericResponse{
		Error: err.Error(),
	})
}

func writeResponse(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("content-type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	w.Write(b)
	return nil
}

// statusFor maps domain errors onto http status codes
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case apperr.IsNotFound(err):
		return http.StatusNotFound
	case apperr.IsClientConnection(err), apperr.IsTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Router builds the api routes
func (s Server) Router() http.Handler {
	rtr := mux.NewRouter()
	rtr.Use(s.LogMiddleware())
	rtr.HandleFunc("/healthz", s.Healthz()).Methods(http.MethodGet)

	api := rtr.PathPrefix("/api").Subrouter()

	v1 := api.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/releases", s.ListReleases()).Methods(http.MethodGet)
	v1.HandleFunc("/releases/acquire", s.AcquireRelease()).Methods(http.MethodPost)

	v1.HandleFunc("/tracked", s.ListTracked()).Methods(http.MethodGet)
	v1.HandleFunc("/tracked", s.TrackSeries()).Methods(http.MethodPost)
	v1.HandleFunc("/tracked/{series}", s.UntrackSeries()).Methods(http.MethodDelete)

	v1.HandleFunc("/downloads", s.ListDownloads()).Methods(http.MethodGet)
	v1.HandleFunc("/downloads/{filename:.+}", s.DeleteDownload()).Methods(http.MethodDelete)

	v1.HandleFunc("/schedule", s.GetSchedule()).Methods(http.MethodGet)
	v1.HandleFunc("/schedule/next", s.NextAiring()).Methods(http.MethodGet)

	v1.HandleFunc("/metadata", s.GetMetadata()).Methods(http.MethodGet)

	v1.HandleFunc("/settings", s.GetSettings()).Methods(http.MethodGet)
	v1.HandleFunc("/settings", s.UpdateSettings()).Methods(http.MethodPut)

	v1.HandleFunc("/jobs", s.ListJobs()).Methods(http.MethodGet)

	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(rtr)
}

// Serve starts the http server and blocks until ctx is done
func (s Server) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.baseLogger.Infow("serving...", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// Healthz is an endpoint that can be used for liveness checks
func (s Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := GenericResponse{
			Response: "ok",
		}
		writeResponse(w, http.StatusOK, response)
	}
}
