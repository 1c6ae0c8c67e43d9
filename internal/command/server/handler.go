package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/lwmacct/261019-go-pkg-interp/internal/config"
	"github.com/lwmacct/261019-go-pkg-interp/internal/render"
	"github.com/lwmacct/261019-go-pkg-interp/internal/version"
)

const (
	// HeaderDefine 请求级定义，值为 key=value，可重复。
	HeaderDefine = "X-Interp-Define"
	// HeaderUnresolved 响应中列出未解析的表达式名，每个一行。
	HeaderUnresolved = "X-Interp-Unresolved"
)

// NewHandler 返回渲染服务的路由。
//
//	GET  /health  健康检查
//	POST /render  请求体为模板，查询参数 delimiter（可重复）与 escape
func NewHandler(cfg config.ServerConfig, r *render.Renderer) http.Handler {
	mux := http.NewServeMux()

	// 健康检查端点
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})

	mux.HandleFunc("POST /render", func(w http.ResponseWriter, req *http.Request) {
		handleRender(w, req, r, cfg.MaxBody)
	})

	// 默认首页（{$} 精确匹配根路径）
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"name":    version.AppRawName,
			"version": version.GetVersion(),
		})
	})

	return mux
}

func handleRender(w http.ResponseWriter, req *http.Request, r *render.Renderer, maxBody int64) {
	if maxBody > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, maxBody)
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)

			return
		}
		writeError(w, http.StatusBadRequest, err)

		return
	}

	query := req.URL.Query()
	rr := render.Request{
		Delimiters: query["delimiter"],
		Escape:     query.Get("escape"),
	}
	if defines := req.Header.Values(HeaderDefine); len(defines) > 0 {
		rr.Defines, err = render.ParseDefines(defines)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)

			return
		}
	}

	out, unresolved, err := r.String(string(body), rr)
	if err != nil {
		slog.Debug("Render failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err)

		return
	}

	for _, name := range unresolved {
		w.Header().Add(HeaderUnresolved, name)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
