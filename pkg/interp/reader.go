package interp

import (
	"errors"
	"io"
)

const readChunk = 4096

// Reader 在读取底层数据的同时做插值。
//
// 只有未闭合表达式（以及末尾可能被截断的起始标记）会被保留到后续数据到达，
// 其余内容读到即处理。若表达式一直没有闭合，保留的内容会持续增长直到 EOF。
// 所有块共享同一个循环检测器。
type Reader struct {
	src  io.Reader
	in   *Interpolator
	loc  locator
	ri   RecursionInterceptor
	buf  []byte
	out  []byte
	eof  bool
	err  error
	init bool
}

// NewReader 创建包装 r 的 [Reader]，使用 in 的当前配置。
func NewReader(r io.Reader, in *Interpolator) *Reader {
	return &Reader{
		src: r,
		in:  in,
		ri:  NewSimpleRecursionInterceptor(),
	}
}

// SetRecursionInterceptor 替换循环检测器。
func (r *Reader) SetRecursionInterceptor(ri RecursionInterceptor) {
	if ri != nil {
		r.ri = ri
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	if !r.init {
		e, err := r.in.engine()
		if err != nil {
			return 0, err
		}
		r.loc = e.loc
		r.init = true
	}

	for len(r.out) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		if r.eof {
			if len(r.buf) == 0 {
				return 0, io.EOF
			}
			r.flush(len(r.buf))

			continue
		}
		r.fill()
		if !r.eof {
			r.flush(r.safeLen())
		}
	}

	n := copy(p, r.out)
	r.out = r.out[n:]

	return n, nil
}

func (r *Reader) fill() {
	chunk := make([]byte, readChunk)
	n, err := r.src.Read(chunk)
	r.buf = append(r.buf, chunk[:n]...)
	switch {
	case errors.Is(err, io.EOF):
		r.eof = true
	case err != nil:
		r.err = err
	}
}

// safeLen 返回可以立即处理的前缀长度，转义串需要与其后的起始标记一起保留。
func (r *Reader) safeLen() int {
	return r.loc.holdBack(string(r.buf), len(r.in.escape))
}

func (r *Reader) flush(n int) {
	if n == 0 {
		return
	}
	s, err := r.in.InterpolateWith(string(r.buf[:n]), r.ri)
	if err != nil {
		r.err = err

		return
	}
	r.out = append(r.out, s...)
	r.buf = r.buf[n:]
}
