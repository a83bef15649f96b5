package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/premiumize-addon/addon"
	"github.com/marcus-crane/premiumize-addon/config"
	"github.com/marcus-crane/premiumize-addon/db"
	"github.com/marcus-crane/premiumize-addon/models"
	"github.com/marcus-crane/premiumize-addon/premiumize"
	"github.com/marcus-crane/premiumize-addon/rpdb"
	"github.com/marcus-crane/premiumize-addon/utils"
)

type fakeAddon struct {
	err         error
	catalogID   string
	movieID     string
	seriesID    string
	streamID    string
	streamCtxID string
}

func (f *fakeAddon) Manifest(context.Context) (models.Manifest, error) {
	if f.err != nil {
		return models.Manifest{}, f.err
	}
	return models.Manifest{ID: addon.ManifestID, Name: "myfiles", Catalogs: []models.ManifestCatalog{}}, nil
}

func (f *fakeAddon) Catalog(_ context.Context, catalogID string) ([]models.MetaPreview, error) {
	f.catalogID = catalogID
	if f.err != nil {
		return nil, f.err
	}
	return []models.MetaPreview{{ID: "premiumize-m1", Type: models.TypeMovie, Name: "Heat"}}, nil
}

func (f *fakeAddon) MovieMeta(_ context.Context, itemID string) (models.Meta, error) {
	f.movieID = itemID
	if f.err != nil {
		return models.Meta{}, f.err
	}
	return models.Meta{ID: addon.NativeIDPrefix + itemID, Type: models.TypeMovie, Name: "Heat"}, nil
}

func (f *fakeAddon) SeriesMeta(_ context.Context, folderID string) (models.SeriesMeta, error) {
	f.seriesID = folderID
	if f.err != nil {
		return models.SeriesMeta{}, f.err
	}
	return models.SeriesMeta{
		Meta:   models.Meta{ID: addon.NativeIDPrefix + folderID, Type: models.TypeSeries, Name: "The Wire"},
		Videos: []models.Video{},
	}, nil
}

func (f *fakeAddon) Streams(ctx context.Context, id string) ([]models.Stream, error) {
	f.streamID = id
	f.streamCtxID = utils.RequestIDFromContext(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return []models.Stream{{Name: "myfiles", Title: "▶️ PLAY [MKV|1.5KB]", URL: "https://example.com/a?b=1&c=2"}}, nil
}

type fakeHistory struct {
	db.Store
	entries []models.HistoryEntry
	limit   int
}

func (f *fakeHistory) GetRecent(_ context.Context, limit int) ([]models.HistoryEntry, error) {
	f.limit = limit
	return f.entries, nil
}

func newRouter(h *Handlers) http.Handler {
	if h.AddonName == "" {
		h.AddonName = "myfiles"
	}
	return Register(mux.NewRouter(), h)
}

func serve(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRootRedirectsToManifest(t *testing.T) {
	rec := serve(t, newRouter(&Handlers{Addon: &fakeAddon{}}), http.MethodGet, "/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/manifest.json", rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	rec := serve(t, newRouter(&Handlers{Addon: &fakeAddon{}}), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestManifest_PrettyPrinted(t *testing.T) {
	rec := serve(t, newRouter(&Handlers{Addon: &fakeAddon{}}), http.MethodGet, "/manifest.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "{\n    \"id\": \"stremio.premiumize.folders\"")
}

func TestCatalog(t *testing.T) {
	fake := &fakeAddon{}
	rec := serve(t, newRouter(&Handlers{Addon: fake}), http.MethodGet, "/catalog/myfiles/premiumize-movies.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "premiumize-movies", fake.catalogID)
	metas := decode(t, rec)["metas"].([]any)
	require.Len(t, metas, 1)
	assert.Equal(t, "Heat", metas[0].(map[string]any)["name"])
}

func TestCatalog_EncodedSlug(t *testing.T) {
	fake := &fakeAddon{}
	rec := serve(t, newRouter(&Handlers{Addon: fake}), http.MethodGet, "/catalog/myfiles/premiumize-tv%20shows.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "premiumize-tv shows", fake.catalogID)
}

func TestCatalog_WrongType(t *testing.T) {
	fake := &fakeAddon{}
	rec := serve(t, newRouter(&Handlers{Addon: fake}), http.MethodGet, "/catalog/movie/premiumize-movies.json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode(t, rec)["error"])
	assert.Empty(t, fake.catalogID)
}

func TestMeta(t *testing.T) {
	fake := &fakeAddon{}
	router := newRouter(&Handlers{Addon: fake})

	rec := serve(t, router, http.MethodGet, "/meta/movie/premiumize-abc.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", fake.movieID)
	meta := decode(t, rec)["meta"].(map[string]any)
	assert.Equal(t, "premiumize-abc", meta["id"])
	assert.Contains(t, meta, "poster")
	assert.Nil(t, meta["poster"])

	rec = serve(t, router, http.MethodGet, "/meta/series/premiumize-wire.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wire", fake.seriesID)
	meta = decode(t, rec)["meta"].(map[string]any)
	assert.Equal(t, []any{}, meta["videos"])
}

func TestMeta_UnknownTypeOrPrefix(t *testing.T) {
	router := newRouter(&Handlers{Addon: &fakeAddon{}})
	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodGet, "/meta/channel/premiumize-abc.json").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodGet, "/meta/movie/tt0113277.json").Code)
}

func TestStreams(t *testing.T) {
	fake := &fakeAddon{}
	rec := serve(t, newRouter(&Handlers{Addon: fake}), http.MethodGet, "/stream/series/tt1234567:1:2.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tt1234567:1:2", fake.streamID)
	assert.NotEmpty(t, fake.streamCtxID)
	assert.Equal(t, rec.Header().Get(requestIDHeader), fake.streamCtxID)
	// Links go out unescaped
	assert.Contains(t, rec.Body.String(), "https://example.com/a?b=1&c=2")
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"addon not found", addon.ErrNotFound, http.StatusNotFound, "not found"},
		{"premiumize auth failure", &premiumize.APIError{Message: "Not logged in."}, http.StatusInternalServerError, "internal server error"},
		{"upstream failure", errors.New("premiumize responded with status 502"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&Handlers{Addon: &fakeAddon{err: tt.err}})
			for _, target := range []string{"/manifest.json", "/catalog/myfiles/premiumize-x.json", "/meta/movie/premiumize-x.json", "/stream/movie/tt1.json"} {
				if target == "/manifest.json" && tt.status == http.StatusNotFound {
					continue
				}
				rec := serve(t, router, http.MethodGet, target)
				assert.Equal(t, tt.status, rec.Code, target)
				assert.Equal(t, tt.body, decode(t, rec)["error"], target)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(t, newRouter(&Handlers{Addon: &fakeAddon{}}), http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode(t, rec)["error"])
}

func TestCORS(t *testing.T) {
	router := newRouter(&Handlers{Addon: &fakeAddon{}})

	req := httptest.NewRequest(http.MethodGet, "/manifest.json", nil)
	req.Header.Set("Origin", "https://web.stremio.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/manifest.json", nil)
	req.Header.Set("Origin", "https://web.stremio.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
}

func TestHistory(t *testing.T) {
	rec := serve(t, newRouter(&Handlers{Addon: &fakeAddon{}}), http.MethodGet, "/api/history")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	history := &fakeHistory{entries: []models.HistoryEntry{{ID: "abc:1", Title: "Heat.mkv"}}}
	router := newRouter(&Handlers{Addon: &fakeAddon{}, History: history})

	rec = serve(t, router, http.MethodGet, "/api/history")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultHistoryLimit, history.limit)
	var entries []models.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Equal(t, history.entries, entries)

	serve(t, router, http.MethodGet, "/api/history?limit=500")
	assert.Equal(t, maxHistoryLimit, history.limit)

	rec = serve(t, router, http.MethodGet, "/api/history?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Runs the real addon service against a mocked Premiumize API
func TestEndToEnd(t *testing.T) {
	defer gock.Off()

	cfg := config.Defaults()
	cfg.Premiumize.APIKey = "abc123"
	cfg.Premiumize.FolderID = "root"
	cfg.RPDB.APIKey = "rpdb-key"

	client := premiumize.NewClient(cfg.Premiumize.APIKey)
	client.HTTPClient = utils.NewHTTPClient(5 * time.Second)
	gock.InterceptClient(client.HTTPClient)
	defer gock.RestoreClient(client.HTTPClient)

	service := addon.NewService(cfg, client, rpdb.NewPosters(cfg.RPDB.APIKey))
	router := newRouter(&Handlers{Addon: service})

	gock.New("https://www.premiumize.me").
		Get("/api/folder/list").
		MatchParam("apikey", "abc123").
		MatchParam("id", "^root$").
		Times(2).
		Reply(200).
		JSON(map[string]any{
			"status": "success",
			"content": []map[string]any{
				{"id": "movies-id", "name": "Movies", "type": "folder"},
			},
		})
	gock.New("https://www.premiumize.me").
		Get("/api/folder/list").
		MatchParam("id", "^movies-id$").
		Reply(200).
		JSON(map[string]any{
			"status": "success",
			"content": []map[string]any{
				{"id": "m1", "name": "Heat [tt0113277-949].mkv", "type": "file", "size": 1500},
			},
		})
	gock.New("https://www.premiumize.me").
		Get("/api/folder/search").
		MatchParam("q", `^\[tt0113277$`).
		Reply(200).
		JSON(map[string]any{
			"status": "success",
			"content": []map[string]any{
				{"id": "m1", "name": "Heat [tt0113277-949].mkv", "type": "file", "size": 1500, "link": "https://dl.example.com/m1.mkv"},
			},
		})
	gock.New("https://www.premiumize.me").
		Get("/api/folder/search").
		MatchParam("q", "^S01E01 \\[tt9999999$").
		Reply(200).
		JSON(map[string]any{"status": "success", "content": []any{}})

	rec := serve(t, router, http.MethodGet, "/manifest.json")
	require.Equal(t, http.StatusOK, rec.Code)
	catalogs := decode(t, rec)["catalogs"].([]any)
	assert.Equal(t, map[string]any{"type": "myfiles", "id": "premiumize-movies", "name": "Movies"}, catalogs[0])

	rec = serve(t, router, http.MethodGet, "/catalog/myfiles/premiumize-movies.json")
	require.Equal(t, http.StatusOK, rec.Code)
	metas := decode(t, rec)["metas"].([]any)
	require.Len(t, metas, 1)
	assert.Equal(t, map[string]any{
		"id":          "tmdb:949",
		"type":        "movie",
		"name":        "Heat",
		"poster":      "https://api.ratingposterdb.com/rpdb-key/imdb/poster-default/tt0113277.jpg",
		"description": nil,
	}, metas[0])

	rec = serve(t, router, http.MethodGet, "/stream/movie/tt0113277.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{map[string]any{
		"name":  "myfiles",
		"title": "▶️ PLAY [MKV|1.5KB]",
		"url":   "https://dl.example.com/m1.mkv",
	}}, decode(t, rec)["streams"])

	rec = serve(t, router, http.MethodGet, "/stream/series/tt9999999:1:1.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{map[string]any{
		"name":        "⚠️ myfiles",
		"description": "[NOT FOUND]",
		"externalUrl": "",
	}}, decode(t, rec)["streams"])

	assert.True(t, gock.IsDone())
}

func TestUpstreamAuthFailure(t *testing.T) {
	defer gock.Off()

	cfg := config.Defaults()
	cfg.Premiumize.APIKey = "SECRETKEY123"
	cfg.Premiumize.FolderID = "root"

	client := premiumize.NewClient(cfg.Premiumize.APIKey)
	client.HTTPClient = utils.NewHTTPClient(5 * time.Second)
	gock.InterceptClient(client.HTTPClient)
	defer gock.RestoreClient(client.HTTPClient)

	router := newRouter(&Handlers{Addon: addon.NewService(cfg, client, rpdb.NewPosters(""))})

	gock.New("https://www.premiumize.me").
		Get("/api/").
		Persist().
		Reply(200).
		JSON(map[string]any{"status": "error", "message": "Not logged in."})

	for _, target := range []string{
		"/manifest.json",
		"/catalog/myfiles/premiumize-movies.json",
		"/meta/movie/premiumize-abc.json",
		"/meta/series/premiumize-abc.json",
		"/stream/movie/premiumize-abc.json",
		"/stream/movie/tt0113277.json",
		"/stream/series/tt0306414:1:2.json",
	} {
		rec := serve(t, router, http.MethodGet, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Equal(t, "internal server error", decode(t, rec)["error"], target)
		assert.NotContains(t, rec.Body.String(), "SECRETKEY123", target)
	}
}
