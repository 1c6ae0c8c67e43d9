package valuesource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
)

// DefaultSQLQuery [SQL] 默认使用的查询，表达式名作为唯一参数。
const DefaultSQLQuery = "SELECT value FROM vars WHERE name = ?"

// DefaultSQLTimeout 单次查询的默认超时。
const DefaultSQLTimeout = 5 * time.Second

// SQL 通过 database/sql 查询值，查询只应返回一行一列。
//
// 没有结果时视为无法回答；查询失败会中止插值。
type SQL struct {
	db      *sql.DB
	query   string
	timeout time.Duration
}

// SQLOption 配置 [SQL]。
type SQLOption func(*SQL)

// WithQuery 替换查询语句，语句必须只有一个占位符。
func WithQuery(query string) SQLOption {
	return func(s *SQL) {
		if query != "" {
			s.query = query
		}
	}
}

// WithQueryTimeout 设置单次查询超时，非正数表示不设置超时。
func WithQueryTimeout(d time.Duration) SQLOption {
	return func(s *SQL) {
		s.timeout = d
	}
}

// NewSQL 创建 SQL 来源，db 的生命周期由调用方管理。
func NewSQL(db *sql.DB, opts ...SQLOption) *SQL {
	s := &SQL{db: db, query: DefaultSQLQuery, timeout: DefaultSQLTimeout}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *SQL) Value(expression string, _ interp.Delimiter) (any, error) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var v any
	err := s.db.QueryRowContext(ctx, s.query, expression).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("valuesource: query %q: %w", expression, err)
	}
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}

	return v, nil
}
