package interp

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// match 是一次扫描中找到的表达式。
type match struct {
	start  int    // 起始标记在输入中的位置
	end    int    // 结束标记之后的位置
	whole  string // 含分隔符的完整文本
	inner  string // 去掉分隔符的表达式名
	delim  Delimiter
	closed bool // false 表示找到了起始标记但没有结束标记
}

// locator 负责在输入中定位下一个表达式，解析语义由引擎统一处理。
type locator interface {
	// next 从 from 开始查找下一个表达式。
	next(input string, from int) (match, bool)
	// passes 返回一次调用最多扫描的轮数。
	passes() int
	// holdBack 返回流式处理时可以立即处理的前缀长度，reserve 为转义串长度。
	holdBack(text string, reserve int) int
}

// closeMatch 从起始标记之后查找结束标记。
func closeMatch(input string, start int, d Delimiter) match {
	m := match{start: start, delim: d}
	innerStart := start + len(d.Begin)
	idx := strings.Index(input[innerStart:], d.End)
	if idx < 0 {
		return m
	}

	m.end = innerStart + idx + len(d.End)
	m.whole = input[start:m.end]
	m.inner = input[innerStart : innerStart+idx]
	m.closed = true

	return m
}

// openTail 按 l 的实际扫描顺序返回可以立即处理的前缀长度。
//
// 首个未闭合表达式、末尾可能被截断的起始标记前缀，以及它们之前 reserve 字节
// （留给转义串）都需要保留；已闭合的表达式不会被截断。
func openTail(l locator, text string, delims []Delimiter, reserve int) int {
	from := 0
	hold := len(text)
	for from < len(text) {
		m, ok := l.next(text, from)
		if !ok {
			break
		}
		if !m.closed {
			hold = m.start

			break
		}
		from = m.end
	}

	if hold == len(text) {
		for _, d := range delims {
			for k := len(d.Begin) - 1; k > 0; k-- {
				if len(text)-k >= from && strings.HasSuffix(text, d.Begin[:k]) {
					hold = min(hold, len(text)-k)

					break
				}
			}
		}
	}

	return max(hold-reserve, from)
}

// singleLocator 使用单一分隔符做字面量查找。
type singleLocator struct {
	delim Delimiter
}

func (l singleLocator) next(input string, from int) (match, bool) {
	idx := strings.Index(input[from:], l.delim.Begin)
	if idx < 0 {
		return match{}, false
	}

	return closeMatch(input, from+idx, l.delim), true
}

func (singleLocator) passes() int { return 1 }

func (l singleLocator) holdBack(text string, reserve int) int {
	return openTail(l, text, []Delimiter{l.delim}, reserve)
}

// multiLocator 同时查找多个分隔符，输入中最早出现的起始标记胜出，
// 位置相同时先注册者胜出。
type multiLocator struct {
	delims []Delimiter
}

func (l multiLocator) next(input string, from int) (match, bool) {
	// 每个分隔符本轮找到的起始位置，仅在本次查找内有效
	starts := make([]int, len(l.delims))
	best := -1
	for i, d := range l.delims {
		starts[i] = -1
		if idx := strings.Index(input[from:], d.Begin); idx >= 0 {
			starts[i] = from + idx
		}
		if starts[i] >= 0 && (best < 0 || starts[i] < starts[best]) {
			best = i
		}
	}
	if best < 0 {
		return match{}, false
	}

	return closeMatch(input, starts[best], l.delims[best]), true
}

func (multiLocator) passes() int { return MaxPasses }

func (l multiLocator) holdBack(text string, reserve int) int {
	return openTail(l, text, l.delims, reserve)
}

// regexLocator 使用正则定位表达式，表达式名取自指定的捕获组。
type regexLocator struct {
	re    *regexp.Regexp
	group int
	delim Delimiter
}

func (l regexLocator) next(input string, from int) (match, bool) {
	var loc []int
	for {
		loc = l.re.FindStringSubmatchIndex(input[from:])
		if loc == nil {
			return match{}, false
		}
		if loc[1] > loc[0] {
			break
		}
		// 空匹配：跳过一个字符继续查找
		at := from + loc[0]
		if at >= len(input) {
			return match{}, false
		}
		_, size := utf8.DecodeRuneInString(input[at:])
		from = at + size
	}

	m := match{
		start:  from + loc[0],
		end:    from + loc[1],
		delim:  l.delim,
		closed: true,
	}
	m.whole = input[m.start:m.end]
	if 2*l.group+1 < len(loc) && loc[2*l.group] >= 0 {
		m.inner = input[from+loc[2*l.group] : from+loc[2*l.group+1]]
	}

	return m, true
}

func (regexLocator) passes() int { return 1 }

// holdBack 对正则模式按行切分，保留最后一个换行之后的内容。
func (regexLocator) holdBack(text string, _ int) int {
	return strings.LastIndexByte(text, '\n') + 1
}
