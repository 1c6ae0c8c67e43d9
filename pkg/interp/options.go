package interp

import "log/slog"

// Option 配置 [Interpolator]。
type Option func(*Interpolator)

// WithDelimiter 使用单一的自定义分隔符，空标记会被忽略。
func WithDelimiter(begin, end string) Option {
	return func(in *Interpolator) {
		if d := (Delimiter{Begin: begin, End: end}); d.valid() {
			in.single = d
		}
	}
}

// WithDelimiterSpecs 启用多分隔符模式，specs 格式见 [ParseDelimiter]。
//
// 默认分隔符 ${...} 总是被包含且排在最前。
func WithDelimiterSpecs(specs ...string) Option {
	return func(in *Interpolator) {
		in.SetDelimiterSpecs(specs...)
	}
}

// WithPattern 启用正则模式，表达式正则为 start + end，表达式名取捕获组 1。
//
// start 与 end 同时作为分隔符传给值来源。
func WithPattern(start, end string) Option {
	return func(in *Interpolator) {
		if in.pattern == nil {
			in.pattern = &patternSpec{}
		}
		in.pattern.start = start
		in.pattern.end = end
	}
}

// WithPrefixPattern 启用正则模式并允许表达式带可选前缀。
//
// 默认正则下等价于 `\$\{(prefix)?(.+?)\}`，匹配到的前缀不计入表达式名。
func WithPrefixPattern(prefix string) Option {
	return func(in *Interpolator) {
		if in.pattern == nil {
			in.pattern = &patternSpec{}
		}
		in.pattern.prefix = prefix
	}
}

// WithPatternCache 使用外部的正则缓存，便于多个实例共享编译结果。
func WithPatternCache(cache *PatternCache) Option {
	return func(in *Interpolator) {
		in.patterns = cache
	}
}

// WithEscape 设置转义串，例如 `\`。
func WithEscape(escape string) Option {
	return func(in *Interpolator) {
		in.escape = escape
	}
}

// WithValueSources 追加值来源，按顺序询问。
func WithValueSources(sources ...ValueSource) Option {
	return func(in *Interpolator) {
		in.sources = append(in.sources, sources...)
	}
}

// WithPostProcessors 追加后处理器。
func WithPostProcessors(post ...PostProcessor) Option {
	return func(in *Interpolator) {
		in.post = append(in.post, post...)
	}
}

// WithCacheAnswers 开启跨调用的答案缓存，直到 [Interpolator.ClearAnswers]。
func WithCacheAnswers() Option {
	return func(in *Interpolator) {
		in.cacheAnswers = true
	}
}

// WithLogger 设置日志记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpolator) {
		if logger != nil {
			in.logger = logger
		}
	}
}
