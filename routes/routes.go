package routes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"

	"github.com/marcus-crane/premiumize-addon/addon"
	"github.com/marcus-crane/premiumize-addon/db"
	"github.com/marcus-crane/premiumize-addon/models"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Addon is everything the routes need from the addon service.
type Addon interface {
	Manifest(ctx context.Context) (models.Manifest, error)
	Catalog(ctx context.Context, catalogID string) ([]models.MetaPreview, error)
	MovieMeta(ctx context.Context, itemID string) (models.Meta, error)
	SeriesMeta(ctx context.Context, folderID string) (models.SeriesMeta, error)
	Streams(ctx context.Context, id string) ([]models.Stream, error)
}

var _ Addon = (*addon.Service)(nil)

// Handlers holds what the routes serve from. History and Events are optional.
type Handlers struct {
	AddonName string
	Addon     Addon
	History   db.Store
	Events    *sse.Server
}

func Register(r *mux.Router, h *Handlers) http.Handler {
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})
	r.Use(requestLogger)

	readOnly := []string{http.MethodGet, http.MethodHead}

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/manifest.json", http.StatusMovedPermanently)
	}).Methods(readOnly...)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(readOnly...)

	r.HandleFunc("/manifest.json", h.getManifest).Methods(readOnly...)
	r.HandleFunc("/catalog/{type}/premiumize-{slug}.json", h.getCatalog).Methods(readOnly...)
	r.HandleFunc("/meta/{type:movie|series}/premiumize-{id}.json", h.getMeta).Methods(readOnly...)
	r.HandleFunc("/stream/{type:movie|series}/{id}.json", h.getStreams).Methods(readOnly...)
	r.HandleFunc("/api/history", h.getHistory).Methods(readOnly...)

	if h.Events != nil {
		r.Handle("/events", h.Events).Methods(http.MethodGet)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	})

	return c.Handler(r)
}

func (h *Handlers) getManifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.Addon.Manifest(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, manifest)
}

func (h *Handlers) getCatalog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if vars["type"] != h.AddonName {
		renderError(w, r, addon.ErrNotFound)
		return
	}
	metas, err := h.Addon.Catalog(r.Context(), addon.NativeIDPrefix+vars["slug"])
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, models.CatalogResponse{Metas: metas})
}

func (h *Handlers) getMeta(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var (
		meta any
		err  error
	)
	if vars["type"] == models.TypeSeries {
		meta, err = h.Addon.SeriesMeta(r.Context(), vars["id"])
	} else {
		meta, err = h.Addon.MovieMeta(r.Context(), vars["id"])
	}
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, models.MetaResponse{Meta: meta})
}

func (h *Handlers) getStreams(w http.ResponseWriter, r *http.Request) {
	streams, err := h.Addon.Streams(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, models.StreamResponse{Streams: streams})
}

func (h *Handlers) getHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		renderJSON(w, http.StatusNotFound, map[string]string{"error": "history is disabled"})
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			renderJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive number"})
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}
	entries, err := h.History.GetRecent(r.Context(), limit)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, entries)
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to write response", slog.String("error", err.Error()))
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, addon.ErrNotFound) {
		slog.Debug("Requested item was not found",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		renderJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	slog.Error("Failed to handle request",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	renderJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
