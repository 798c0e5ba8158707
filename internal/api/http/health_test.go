package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realestate-cinematic/cinematic-backend/internal/projects/domain"
	"github.com/realestate-cinematic/cinematic-backend/internal/storage/docstore"
)

func setupTestStore(t *testing.T) (*miniredis.Miniredis, docstore.Store) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, docstore.NewRedisStore(client, "listings")
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRoot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHealthHandler("test-service", "1.0.0", nil).RegisterRoutes(router)

	rr := serve(router, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "RealEstate Cinematic API is running"}`, rr.Body.String())
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		store  func(t *testing.T) docstore.Store
		wantDB string
	}{
		{
			name:   "no store",
			store:  func(t *testing.T) docstore.Store { return nil },
			wantDB: "disabled",
		},
		{
			name: "store up",
			store: func(t *testing.T) docstore.Store {
				_, s := setupTestStore(t)
				return s
			},
			wantDB: "up",
		},
		{
			name: "store down",
			store: func(t *testing.T) docstore.Store {
				mr, s := setupTestStore(t)
				mr.Close()
				return s
			},
			wantDB: "down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			NewHealthHandler("test-service", "1.0.0", tt.store(t)).RegisterRoutes(router)

			for _, path := range []string{"/health", "/healthz"} {
				rr := serve(router, http.MethodGet, path)
				require.Equal(t, http.StatusOK, rr.Code)

				var resp HealthResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "healthy", resp.Status)
				assert.Equal(t, "test-service", resp.Service)
				assert.Equal(t, "1.0.0", resp.Version)
				assert.Equal(t, tt.wantDB, resp.DB)
			}
		})
	}
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	NewHealthHandler("test-service", "1.0.0", nil).RegisterRoutes(router)

	rr := serve(router, http.MethodPost, "/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestDiagnostics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("url not set", func(t *testing.T) {
		router := gin.New()
		NewDiagnosticsHandler(nil, false).RegisterRoutes(router)

		rr := serve(router, http.MethodGet, "/test")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp DiagnosticsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "running", resp.Backend)
		assert.Equal(t, "not set", resp.DatabaseURL)
		assert.Equal(t, "available but not initialized", resp.Database)
		assert.Equal(t, "not connected", resp.ConnectionStatus)
		assert.Empty(t, resp.Collections)
	})

	t.Run("connected", func(t *testing.T) {
		_, store := setupTestStore(t)
		_, err := store.Insert(context.Background(), domain.CollectionName, docstore.Fields{"title": []byte(`"x"`)})
		require.NoError(t, err)

		router := gin.New()
		NewDiagnosticsHandler(store, true).RegisterRoutes(router)

		var resp DiagnosticsResponse
		require.NoError(t, json.Unmarshal(serve(router, http.MethodGet, "/test").Body.Bytes(), &resp))
		assert.Equal(t, "set", resp.DatabaseURL)
		assert.Equal(t, "connected and working", resp.Database)
		assert.Equal(t, "connected", resp.ConnectionStatus)
		assert.Equal(t, "listings", resp.DatabaseName)
		assert.Equal(t, []string{domain.CollectionName}, resp.Collections)
	})

	t.Run("store failing", func(t *testing.T) {
		mr, store := setupTestStore(t)
		mr.Close()

		router := gin.New()
		NewDiagnosticsHandler(store, true).RegisterRoutes(router)

		rr := serve(router, http.MethodGet, "/test")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp DiagnosticsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Database, "connected but error: ")
		assert.LessOrEqual(t, len([]rune(resp.Database)), len("connected but error: ")+maxDiagnosticErrorLen)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "éé", truncate("ééé", 2))
}

func TestSchemaHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/schema", SchemaHandler)

	rr := serve(router, http.MethodGet, "/schema")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]struct {
		Title  string   `json:"title"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, resp, "videoproject")
	assert.Equal(t, "VideoProject", resp["videoproject"].Title)
	assert.Equal(t, []string{"title", "description", "scenes", "music", "status", "output_url"}, resp["videoproject"].Fields)
}
