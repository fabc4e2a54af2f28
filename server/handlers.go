package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/kasuboski/simulcast/pkg/schedule"
	"github.com/kasuboski/simulcast/pkg/settings"
	"go.uber.org/zap"
)

type AcquireRequest struct {
	Title string `json:"title"`
}

type TrackRequest struct {
	Series string `json:"series"`
}

type TrackResponse struct {
	Added bool `json:"added"`
}

type UntrackResponse struct {
	Removed int `json:"removed"`
}

type NextAiringResponse struct {
	Airing *schedule.Airing `json:"airing"`
	Until  string           `json:"until,omitempty"`
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	log := logger.FromCtx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Errorw(msg, zap.Error(err), zap.Int("status", status))
	} else {
		log.Debugw(msg, zap.Error(err), zap.Int("status", status))
	}
	writeErrorResponse(w, status, err)
}

func (s Server) ok(w http.ResponseWriter, r *http.Request, status int, response any) {
	if err := writeResponse(w, status, GenericResponse{Response: response}); err != nil {
		logger.FromCtx(r.Context()).Errorw("failed to write response", zap.Error(err))
	}
}

// ListReleases polls the feed and lists its releases
func (s Server) ListReleases() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := ParsePaginationParams(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		releases, err := s.manager.PollFeed(r.Context())
		if err != nil {
			s.fail(w, r, "failed to poll feed", err)
			return
		}

		s.ok(w, r, http.StatusOK, paginate(releases, params))
	}
}

// AcquireRelease submits a release from the feed and tracks its series
func (s Server) AcquireRelease() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AcquireRequest
		if err := decode(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}
		if req.Title == "" {
			writeErrorResponse(w, http.StatusBadRequest, errors.New("title is required"))
			return
		}

		if err := s.manager.Acquire(r.Context(), req.Title); err != nil {
			s.fail(w, r, "failed to acquire release", err)
			return
		}

		s.ok(w, r, http.StatusAccepted, req)
	}
}

func (s Server) ListTracked() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ok(w, r, http.StatusOK, s.manager.Tracked(r.Context()))
	}
}

func (s Server) TrackSeries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TrackRequest
		if err := decode(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}
		if req.Series == "" {
			writeErrorResponse(w, http.StatusBadRequest, errors.New("series is required"))
			return
		}

		added, err := s.manager.Track(r.Context(), req.Series)
		if err != nil {
			s.fail(w, r, "failed to track series", err)
			return
		}

		status := http.StatusOK
		if added {
			status = http.StatusCreated
		}
		s.ok(w, r, status, TrackResponse{Added: added})
	}
}

func (s Server) UntrackSeries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		series := mux.Vars(r)["series"]

		removed, err := s.manager.Untrack(r.Context(), series)
		if err != nil {
			s.fail(w, r, "failed to untrack series", err)
			return
		}

		s.ok(w, r, http.StatusOK, UntrackResponse{Removed: removed})
	}
}

// ListDownloads reconciles the download folder against the client
func (s Server) ListDownloads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := ParsePaginationParams(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		records, err := s.manager.Downloads(r.Context())
		if err != nil {
			s.fail(w, r, "failed to list downloads", err)
			return
		}

		s.ok(w, r, http.StatusOK, paginate(records, params))
	}
}

func (s Server) DeleteDownload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := mux.Vars(r)["filename"]

		rec, err := s.manager.DeleteDownload(r.Context(), filename)
		if err != nil {
			s.fail(w, r, "failed to delete download", err)
			return
		}

		s.ok(w, r, http.StatusOK, rec)
	}
}

func (s Server) GetSchedule() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sched, err := s.manager.Schedule(r.Context())
		if err != nil {
			s.fail(w, r, "failed to fetch schedule", err)
			return
		}

		s.ok(w, r, http.StatusOK, sched)
	}
}

// NextAiring returns the next slot airing today, if any
func (s Server) NextAiring() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		airing, found, err := s.manager.NextAiring(r.Context())
		if err != nil {
			s.fail(w, r, "failed to fetch schedule", err)
			return
		}

		var resp NextAiringResponse
		if found {
			resp.Airing = &airing
			resp.Until = airing.Until(time.Now()).Round(time.Minute).String()
		}
		s.ok(w, r, http.StatusOK, resp)
	}
}

// GetMetadata looks up series metadata, fetching it on a miss. Unavailable metadata is still a 200.
func (s Server) GetMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("title")
		if raw == "" {
			writeErrorResponse(w, http.StatusBadRequest, errors.New("title query parameter is required"))
			return
		}

		s.ok(w, r, http.StatusOK, s.manager.Metadata(r.Context(), raw))
	}
}

func (s Server) GetSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ok(w, r, http.StatusOK, s.manager.Settings().Redacted())
	}
}

// UpdateSettings replaces the settings. A redacted or empty password keeps the current one.
func (s Server) UpdateSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var next settings.Settings
		if err := decode(r, &next); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		current := s.manager.Settings()
		if next.ClientPassword == "" || next.ClientPassword == current.Redacted().ClientPassword {
			next.ClientPassword = current.ClientPassword
		}

		if err := s.manager.UpdateSettings(r.Context(), next); err != nil {
			s.fail(w, r, "failed to update settings", err)
			return
		}

		s.ok(w, r, http.StatusOK, next.Redacted())
	}
}

func (s Server) ListJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.jobs == nil {
			s.ok(w, r, http.StatusOK, map[string]any{})
			return
		}
		s.ok(w, r, http.StatusOK, s.jobs.State())
	}
}
