// Package render 按 [config.RenderConfig] 组装值来源链，渲染字符串、数据流与模板文件。
//
// 来源顺序（先回答者优先）：请求级定义、--define、properties 文件、YAML 值文件、
// SQLite 值库、env.* 环境变量、Shell 参数展开。
//
// Shell 来源每次渲染新建，${VAR:=word} 的赋值只在本次渲染内可见。
package render

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lwmacct/261019-go-pkg-interp/internal/config"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/ctxcache"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/valuesource"
)

// ErrUnresolved 严格模式下存在未解析的表达式。
var ErrUnresolved = errors.New("render: unresolved expressions")

// UnresolvedError 列出未解析的表达式名。
type UnresolvedError struct {
	Names []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnresolved, strings.Join(e.Names, ", "))
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolved
}

// Request 单次渲染的覆盖项，零值表示完全使用配置。
type Request struct {
	Delimiters []string
	Escape     string
	Defines    valuesource.Map
}

// Renderer 持有按配置加载好的值来源，可被多个 goroutine 共享。
type Renderer struct {
	cfg       config.RenderConfig
	sources   []interp.ValueSource
	shellOpts []valuesource.EnvOption
	db        *sql.DB
	logger    *slog.Logger
}

// Option 配置 [Renderer]。
type Option func(*options)

type options struct {
	environ []string
	logger  *slog.Logger
}

// WithEnviron 使用给定的 "KEY=VALUE" 列表代替进程环境变量。
func WithEnviron(environ []string) Option {
	return func(o *options) {
		o.environ = environ
	}
}

// WithLogger 设置日志记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New 加载 cfg 中声明的全部值来源。
func New(cfg config.RenderConfig, opts ...Option) (*Renderer, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{cfg: cfg, logger: o.logger}

	if len(cfg.Defines) > 0 {
		defines, err := ParseDefines(cfg.Defines)
		if err != nil {
			return nil, err
		}
		r.sources = append(r.sources, defines)
	}

	if len(cfg.Props) > 0 {
		props, err := valuesource.LoadProperties(cfg.Props...)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("Loaded properties", "files", cfg.Props, "keys", props.Len())
		r.sources = append(r.sources, props)
	}

	if len(cfg.Values) > 0 {
		values, err := valuesource.LoadYAML(cfg.Values...)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("Loaded values", "files", cfg.Values)
		r.sources = append(r.sources, values)
	}

	if cfg.SQLite != "" {
		db, err := sql.Open("sqlite3", cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("render: open sqlite %s: %w", cfg.SQLite, err)
		}
		r.db = db
		r.sources = append(r.sources, valuesource.NewSQL(db,
			valuesource.WithQuery(cfg.SQLQuery),
			valuesource.WithQueryTimeout(cfg.SQLTimeout),
		))
	}

	if !cfg.NoEnv {
		// 环境快照只取一次，之后每次渲染的 Shell 都从同一快照开始
		environ := o.environ
		if environ == nil {
			environ = os.Environ()
		}
		envOpts := []valuesource.EnvOption{valuesource.WithEnviron(environ)}
		if cfg.EnvIgnoreCase {
			envOpts = append(envOpts, valuesource.WithCaseInsensitive())
		}
		r.sources = append(r.sources, valuesource.NewEnv(envOpts...))
		r.shellOpts = envOpts
	}

	return r, nil
}

// Close 释放 SQLite 连接。
func (r *Renderer) Close() error {
	if r.db == nil {
		return nil
	}

	return r.db.Close()
}

// ParseDefines 将 "key=value" 列表解析为 [valuesource.Map]。
func ParseDefines(defines []string) (valuesource.Map, error) {
	m := make(valuesource.Map, len(defines))
	for _, def := range defines {
		key, value, ok := strings.Cut(def, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("render: invalid define %q, want key=value", def)
		}
		m[key] = value
	}

	return m, nil
}

// interpOptions 返回一次渲染使用的解析器选项，fb 收集未解析的表达式。
func (r *Renderer) interpOptions(req Request, fb *valuesource.Feedbacking, post ...interp.PostProcessor) []interp.Option {
	delims := r.cfg.Delimiters
	if len(req.Delimiters) > 0 {
		delims = req.Delimiters
	}
	escape := r.cfg.Escape
	if req.Escape != "" {
		escape = req.Escape
	}

	sources := make([]interp.ValueSource, 0, len(r.sources)+3)
	if len(req.Defines) > 0 {
		sources = append(sources, req.Defines)
	}
	sources = append(sources, r.sources...)
	if r.shellOpts != nil {
		sources = append(sources, valuesource.NewShell(r.shellOpts...))
	}
	sources = append(sources, fb)

	opts := []interp.Option{
		interp.WithValueSources(sources...),
		interp.WithEscape(escape),
		interp.WithPostProcessors(post...),
		interp.WithLogger(r.logger),
	}
	if len(delims) > 0 {
		opts = append(opts, interp.WithDelimiterSpecs(delims...))
	}

	return opts
}

func newFeedback() *valuesource.Feedbacking {
	return valuesource.NewFeedbackingMessage("${expression}")
}

// drainFeedback 记录并清空共享来源累积的诊断信息。
func (r *Renderer) drainFeedback() {
	for _, src := range r.sources {
		fp, ok := src.(interp.FeedbackProvider)
		if !ok {
			continue
		}
		for _, f := range fp.Feedback() {
			r.logger.Debug("Value source feedback", "message", f.Message, "error", f.Err)
		}
		fp.ClearFeedback()
	}
}

// unresolved 返回去重排序后的未解析表达式，严格模式下同时返回错误。
func (r *Renderer) unresolved(fb *valuesource.Feedbacking) ([]string, error) {
	r.drainFeedback()

	var names []string
	for _, f := range fb.Feedback() {
		names = append(names, f.Message)
	}
	slices.Sort(names)
	names = slices.Compact(names)

	if len(names) > 0 && r.cfg.Strict {
		return names, &UnresolvedError{Names: names}
	}
	for _, name := range names {
		r.logger.Warn("Expression not resolved", "expression", name)
	}

	return names, nil
}

// String 渲染 text，返回结果与未解析的表达式名。
func (r *Renderer) String(text string, req Request) (string, []string, error) {
	fb := newFeedback()
	out, err := interp.New(r.interpOptions(req, fb)...).Interpolate(text)
	if err != nil {
		r.drainFeedback()

		return "", nil, err
	}
	names, err := r.unresolved(fb)
	if err != nil {
		return "", names, err
	}

	return out, names, nil
}

// Stream 将 src 渲染到 dst，边读边写。
func (r *Renderer) Stream(dst io.Writer, src io.Reader, req Request) ([]string, error) {
	fb := newFeedback()

	return r.stream(dst, src, interp.New(r.interpOptions(req, fb)...), fb)
}

func (r *Renderer) stream(dst io.Writer, src io.Reader, in *interp.Interpolator, fb *valuesource.Feedbacking) ([]string, error) {
	if _, err := io.Copy(dst, interp.NewReader(src, in)); err != nil {
		r.drainFeedback()

		return nil, err
	}

	return r.unresolved(fb)
}

// ═══════════════════════════════════════════════════════════════════════════
// 文件渲染
// ═══════════════════════════════════════════════════════════════════════════

// Result 单个模板文件的渲染结果。
type Result struct {
	Source     string
	Target     string
	Unresolved []string
	Skipped    bool
}

// Job 一组模板文件及其输出位置。
type Job struct {
	Source string
	Target string
}

// Expand 展开模板路径或 ** 通配符，OutDir 非空时计算输出路径。
//
// 通配符匹配的文件保留相对于通配符基准目录的路径；
// 输出文件名去掉配置的模板后缀。
func (r *Renderer) Expand(patterns []string) ([]Job, error) {
	var jobs []Job
	for _, pattern := range patterns {
		base := filepath.Dir(pattern)
		matches := []string{pattern}
		if hasMeta(pattern) {
			b, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
			base = filepath.FromSlash(b)

			var err error
			matches, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("render: glob %s: %w", pattern, err)
			}
			slices.Sort(matches)
			if len(matches) == 0 {
				r.logger.Warn("Pattern matched no files", "pattern", pattern)
			}
		}

		for _, match := range matches {
			job := Job{Source: match}
			if r.cfg.OutDir != "" {
				rel, err := filepath.Rel(base, match)
				if err != nil {
					rel = filepath.Base(match)
				}
				if r.cfg.Suffix != "" {
					rel = strings.TrimSuffix(rel, r.cfg.Suffix)
				}
				job.Target = filepath.Join(r.cfg.OutDir, rel)
			}
			jobs = append(jobs, job)
		}
	}

	return jobs, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// Files 渲染模板文件。OutDir 为空时依次写入 stdout，否则写入各自的输出文件。
//
// 配置了 CacheFile 且所有输出都不旧于模板、缓存的值也未变化时，跳过全部渲染。
func (r *Renderer) Files(ctx context.Context, patterns []string, stdout io.Writer) ([]Result, error) {
	jobs, err := r.Expand(patterns)
	if err != nil {
		return nil, err
	}

	var cache *ctxcache.Cache
	if r.cfg.CacheFile != "" && r.cfg.OutDir != "" {
		cache = ctxcache.New(r.cfg.CacheFile)
		fresh, err := r.upToDate(cache, jobs)
		if err != nil {
			return nil, err
		}
		if fresh {
			r.logger.Info("Outputs up to date", "cache", r.cfg.CacheFile, "files", len(jobs))
			results := make([]Result, len(jobs))
			for i, job := range jobs {
				results[i] = Result{Source: job.Source, Target: job.Target, Skipped: true}
			}

			return results, nil
		}
	}

	var post []interp.PostProcessor
	if cache != nil {
		post = append(post, cache.Recorder())
	}

	results := make([]Result, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		fb := newFeedback()
		in := interp.New(r.interpOptions(Request{}, fb, post...)...)
		names, err := r.file(job, in, fb, stdout)
		if err != nil {
			return results, err
		}
		results = append(results, Result{Source: job.Source, Target: job.Target, Unresolved: names})
	}

	if cache != nil {
		if err := cache.Store(); err != nil {
			return results, err
		}
	}

	return results, nil
}

func (r *Renderer) upToDate(cache *ctxcache.Cache, jobs []Job) (bool, error) {
	for _, job := range jobs {
		if ctxcache.MustFilter(job.Source, job.Target) {
			return false, nil
		}
	}

	f, err := interp.NewFixed(r.interpOptions(Request{}, newFeedback())...)
	if err != nil {
		return false, err
	}

	return cache.ResolvesToSameValues(f, nil)
}

func (r *Renderer) file(job Job, in *interp.Interpolator, fb *valuesource.Feedbacking, stdout io.Writer) ([]string, error) {
	src, err := os.Open(job.Source)
	if err != nil {
		return nil, fmt.Errorf("render: open %s: %w", job.Source, err)
	}
	defer func() { _ = src.Close() }()

	if job.Target == "" {
		names, err := r.stream(stdout, src, in, fb)
		if err != nil {
			return nil, fmt.Errorf("render: %s: %w", job.Source, err)
		}

		return names, nil
	}

	if err := os.MkdirAll(filepath.Dir(job.Target), 0o755); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	dst, err := os.Create(job.Target)
	if err != nil {
		return nil, fmt.Errorf("render: create %s: %w", job.Target, err)
	}

	names, err := r.stream(dst, src, in, fb)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(job.Target)

		return nil, fmt.Errorf("render: %s: %w", job.Source, err)
	}
	r.logger.Debug("Rendered", "source", job.Source, "target", job.Target)

	return names, nil
}
