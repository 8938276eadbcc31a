package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aura-studio/apifunc/handler"
	"github.com/aura-studio/apifunc/response"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type itemQuery struct {
	Limit int `json:"limit"`
}

func itemRoute(t *testing.T, seen *events.APIGatewayV2HTTPRequest) *handler.Wrapper[any, itemQuery, any] {
	t.Helper()
	def := handler.Definition{
		Method: handler.MethodGet,
		Path:   "/items/{id}",
		Query:  json.RawMessage(`{"type":"object","properties":{"limit":{"type":"integer"}}}`),
	}
	return handler.MustWrap(def, func(ctx context.Context, ev *handler.ValidatedEvent[any, itemQuery, any]) (any, error) {
		if seen != nil {
			*seen = ev.APIGatewayV2HTTPRequest
		}
		return response.Success(map[string]any{
			"id":    ev.Input.Path["id"],
			"limit": ev.Input.Query.Limit,
		}, response.WithCookie("session=1")), nil
	})
}

func TestGinPath(t *testing.T) {
	assert.Equal(t, "/items/:id", GinPath("/items/{id}"))
	assert.Equal(t, "/files/*proxy", GinPath("/files/{proxy+}"))
	assert.Equal(t, "/orgs/:org/items", GinPath("/orgs/{org}/items"))
	assert.Equal(t, "/", GinPath("/"))
}

func TestEngine_DispatchesToRoute(t *testing.T) {
	var seen events.APIGatewayV2HTTPRequest
	e := NewEngine(WithStage("test"))
	e.Register(itemRoute(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/items/42?limit=5", nil)
	req.Header.Set("X-Trace", "abc")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, response.ContentTypeJSON, resp.Header.Get("Content-Type"))
	assert.Equal(t, "session=1", resp.Header.Get("Set-Cookie"))
	assert.Equal(t, "42", gjson.GetBytes(body, "data.id").String())
	assert.Equal(t, int64(5), gjson.GetBytes(body, "data.limit").Int())

	assert.Equal(t, "GET /items/{id}", seen.RouteKey)
	assert.Equal(t, "/items/42", seen.RawPath)
	assert.Equal(t, "limit=5", seen.RawQueryString)
	assert.Equal(t, "abc", seen.Headers["x-trace"])
	assert.Equal(t, "test", seen.RequestContext.Stage)
	assert.Equal(t, http.MethodGet, seen.RequestContext.HTTP.Method)
	assert.NotEmpty(t, seen.RequestContext.RequestID)
}

func TestEngine_FailureResponse(t *testing.T) {
	e := NewEngine()
	e.Register(itemRoute(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/items/42?limit=many", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handler.CodeValidation, gjson.Get(w.Body.String(), "code").String())
}

func TestEngine_GreedyPathAndBinaryBody(t *testing.T) {
	var seen events.APIGatewayV2HTTPRequest
	def := handler.Definition{Method: handler.MethodPut, Path: "/files/{proxy+}", DisableAuth: true}
	e := NewEngine()
	e.Register(handler.MustWrap(def, func(ctx context.Context, ev *handler.ValidatedEvent[string, any, any]) (any, error) {
		seen = ev.APIGatewayV2HTTPRequest
		return events.APIGatewayV2HTTPResponse{
			StatusCode:      http.StatusCreated,
			Body:            "aGk=", // hi
			IsBase64Encoded: true,
		}, nil
	}))

	req := httptest.NewRequest(http.MethodPut, "/files/a/b.bin", strings.NewReader("\xff\xfe"))
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hi", w.Body.String())
	assert.Equal(t, "a/b.bin", seen.PathParameters["proxy"])
	assert.True(t, seen.IsBase64Encoded)
	assert.Equal(t, "//4=", seen.Body)
}

func TestEngine_PassThroughResultIsJSON(t *testing.T) {
	def := handler.Definition{Method: handler.MethodGet, Path: "/raw"}
	e := NewEngine()
	e.Register(handler.MustWrap(def, func(ctx context.Context, ev *handler.ValidatedEvent[any, any, any]) (any, error) {
		return map[string]any{"foo": "bar"}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/raw", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"foo":"bar"}`, w.Body.String())
}

func TestEngine_HealthCheckAndMeta(t *testing.T) {
	e := NewEngine()
	e.Register(itemRoute(t, nil))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health-check", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/_/meta", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	routes := gjson.Get(w.Body.String(), "routes").Array()
	require.Len(t, routes, 1)
	assert.Equal(t, "/items/{id}", routes[0].Get("path").String())
	assert.Equal(t, "integer", routes[0].Get("query.properties.limit.type").String())

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEngine_Cors(t *testing.T) {
	e := NewEngine(WithCors())

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/health-check", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithConfig(t *testing.T) {
	o := NewOptions(WithConfig([]byte("http:\n  address: \":9090\"\n  cors: true\n  stage: dev\n")))
	assert.Equal(t, ":9090", o.Address)
	assert.True(t, o.CorsMode)
	assert.False(t, o.DebugMode)
	assert.Equal(t, "dev", o.Stage)

	assert.Panics(t, func() {
		NewOptions(WithConfig([]byte("http: [")))
	})
}

func TestFindDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = FindDefaultConfigFile()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "http.yaml"), []byte("http:\n  debug: true\n"), 0o644))
	p, err := FindDefaultConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "http.yaml", p)
	assert.True(t, NewOptions(WithDefaultConfig()).DebugMode)
}
