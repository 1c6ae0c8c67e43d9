package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261019-go-pkg-interp/internal/config"
	"github.com/lwmacct/261019-go-pkg-interp/internal/render"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Render.Defines = []string{"app=demo", "loop=${loop2}", "loop2=${loop}"}
	cfg.Server.MaxBody = 64
	if mutate != nil {
		mutate(&cfg)
	}

	r, err := render.New(cfg.Render, render.WithEnviron([]string{"REGION=eu"}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	srv := httptest.NewServer(NewHandler(cfg.Server, r))
	t.Cleanup(srv.Close)

	return srv
}

func post(t *testing.T, url, body string, headers ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Add(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "interp", got["name"])
	assert.NotEmpty(t, got["version"])
}

func TestRender(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name       string
		path       string
		body       string
		headers    []string
		want       string
		unresolved []string
	}{
		{
			name: "configured values",
			path: "/render",
			body: "${app} in ${REGION}",
			want: "demo in eu",
		},
		{
			name:    "request defines",
			path:    "/render",
			body:    "${app}/${user}",
			headers: []string{HeaderDefine, "user=alice", HeaderDefine, "app=override"},
			want:    "override/alice",
		},
		{
			name: "delimiter and escape",
			path: "/render?delimiter=@&escape=%5C",
			body: `@app@ \${app}`,
			want: "demo ${app}",
		},
		{
			name:       "unresolved",
			path:       "/render",
			body:       "${a} ${b}",
			want:       "${a} ${b}",
			unresolved: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body, tt.headers...)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, readBody(t, resp))
			assert.Equal(t, tt.unresolved, resp.Header.Values(HeaderUnresolved))
		})
	}
}

func TestRender_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := post(t, srv.URL+"/render", "${loop}")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "cycle")

	resp = post(t, srv.URL+"/render", "x", HeaderDefine, "bad")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv.URL+"/render", strings.Repeat("x", 65))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/render")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRender_Strict(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Render.Strict = true })

	resp := post(t, srv.URL+"/render", "${missing}")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "missing")
}

func TestRender_AssignmentDoesNotLeakBetweenRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := post(t, srv.URL+"/render", "${TENANT:=alice}")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", readBody(t, resp))

	resp = post(t, srv.URL+"/render", "${TENANT}")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "${TENANT}", readBody(t, resp))
	assert.Equal(t, []string{"TENANT"}, resp.Header.Values(HeaderUnresolved))
}
