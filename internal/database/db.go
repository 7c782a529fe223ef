// Package database はデータベース接続プールとマイグレーション管理を提供する。
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

// ErrMissingDatabaseURL は接続文字列が未設定のままプールが初回利用された場合のエラー。
// 起動時の設定検証をすり抜けた場合のfail-fast境界として機能する。
var ErrMissingDatabaseURL = errors.New("database connection string is not configured")

// プールの接続上限。サーバーレス実行環境ではプロセスインスタンスが多数起動するため、
// 1インスタンスあたりの実接続数を最小に抑えてデータベース側の接続上限枯渇を防ぐ。
const (
	maxOpenConns    = 3
	maxIdleConns    = 1
	connMaxIdleTime = 30 * time.Second
	connMaxLifetime = 5 * time.Minute
	queryTimeout    = 5 * time.Second
)

// Pool はプロセス生存期間で共有される単一のデータベース接続プールハンドル。
// コンポジションルートで1回だけ構築し、ハンドラーへ注入して使う。
// 実際の接続プールは初回のGet呼び出しで遅延作成され、以後は同一インスタンスを返す。
type Pool struct {
	dsn string

	once sync.Once
	db   *sql.DB
	err  error

	// queryTimeout は全クエリ種別（SELECT含む）の実行期限。
	// ストールしたリクエストが少数の接続を占有し続けるのを防ぐ。
	queryTimeout time.Duration

	// openFn はテストでの差し替え用。通常はsql.Open。
	openFn func(driverName, dataSourceName string) (*sql.DB, error)
}

// NewPool はPoolハンドルを生成する。この時点では接続を開かない。
func NewPool(dsn string) *Pool {
	return &Pool{
		dsn:          dsn,
		queryTimeout: queryTimeout,
		openFn:       sql.Open,
	}
}

// NewPoolWithDB は既存の*sql.DBをラップしたPoolを生成する。
// sqlmockを使うテストでの利用を想定している。
func NewPoolWithDB(db *sql.DB) *Pool {
	p := &Pool{
		dsn:          "injected",
		queryTimeout: queryTimeout,
		openFn:       sql.Open,
	}
	p.once.Do(func() { p.db = db })
	return p
}

// Get は共有プールを返す。初回呼び出しでプールを作成し、以後は同一のものを返す。
// 並行して呼ばれても作成されるプールは常に1つ。
// 接続文字列が未設定の場合はErrMissingDatabaseURLを返す。
func (p *Pool) Get() (*sql.DB, error) {
	p.once.Do(func() {
		if p.dsn == "" {
			p.err = ErrMissingDatabaseURL
			return
		}

		db, err := p.openFn("postgres", p.dsn)
		if err != nil {
			p.err = fmt.Errorf("failed to open database: %w", err)
			return
		}

		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxIdleConns)
		db.SetConnMaxIdleTime(connMaxIdleTime)
		db.SetConnMaxLifetime(connMaxLifetime)

		slog.Info("database pool created",
			slog.Int("max_open_conns", maxOpenConns),
			slog.Int("max_idle_conns", maxIdleConns),
		)

		p.db = db
	})

	return p.db, p.err
}

// Ping はプールを作成して接続疎通を確認する。
func (p *Pool) Ping(ctx context.Context) error {
	db, err := p.Get()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close はプールを閉じる。未作成の場合は何もしない。
func (p *Pool) Close() error {
	if p.db == nil {
		return nil
	}
	slog.Info("database pool closed")
	return p.db.Close()
}

// Rows は結果セットとそれに紐づくクエリ期限を束ねる。
// Closeで接続の返却と期限の解除を同時に行う。
type Rows struct {
	*sql.Rows
	cancel context.CancelFunc
}

// Close は結果セットを閉じ、クエリ期限を解除する。
func (r *Rows) Close() error {
	defer r.cancel()
	return r.Rows.Close()
}

// Row は1行クエリの結果を保持する。Scan完了でクエリ期限を解除する。
type Row struct {
	row    *sql.Row
	cancel context.CancelFunc
}

// Scan は行の値をdestに読み取る。行が無い場合はsql.ErrNoRowsを返す。
func (r *Row) Scan(dest ...any) error {
	defer r.cancel()
	return r.row.Scan(dest...)
}

// Query はパラメータ化クエリを実行し、行を返す。
// 接続の取得と実行をqueryTimeoutで制限する。接続はrows.Close時にプールへ返却される。
func (p *Pool) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	db, err := p.Get()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)

	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	logQuery(ctx, "query", query, len(args), time.Since(start), err)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Rows{Rows: rows, cancel: cancel}, nil
}

// QueryRow はパラメータ化クエリを実行し、最初の1行を返す。
// 実行と読み取りをqueryTimeoutで制限する。
func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) (*Row, error) {
	db, err := p.Get()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)

	start := time.Now()
	row := db.QueryRowContext(ctx, query, args...)
	logQuery(ctx, "query_row", query, len(args), time.Since(start), nil)
	return &Row{row: row, cancel: cancel}, nil
}

// Exec はパラメータ化ステートメントを実行する。
// 接続の取得と実行をqueryTimeoutで制限し、ストールしたリクエストによるプール占有を防ぐ。
func (p *Pool) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db, err := p.Get()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	start := time.Now()
	result, err := db.ExecContext(ctx, query, args...)
	duration := time.Since(start)

	if err == nil {
		if affected, raErr := result.RowsAffected(); raErr == nil {
			slog.DebugContext(ctx, "db exec",
				slog.String("query", truncateQuery(query)),
				slog.Int("param_count", len(args)),
				slog.Int64("rows_affected", affected),
				slog.Float64("duration_ms", float64(duration.Nanoseconds())/float64(time.Millisecond)),
			)
			return result, nil
		}
	}
	logQuery(ctx, "exec", query, len(args), duration, err)
	return result, err
}

// logQuery はクエリの実行結果をログに記録する。
// クエリ本文は切り詰め、パラメータは件数のみ記録する（値は記録しない）。
func logQuery(ctx context.Context, kind, query string, paramCount int, duration time.Duration, err error) {
	attrs := []any{
		slog.String("query", truncateQuery(query)),
		slog.Int("param_count", paramCount),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/float64(time.Millisecond)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.ErrorContext(ctx, "db "+kind+" failed", attrs...)
		return
	}
	slog.DebugContext(ctx, "db "+kind, attrs...)
}

// truncateQuery はログ出力用にクエリ本文を切り詰める。
func truncateQuery(query string) string {
	const maxLen = 120
	if len(query) > maxLen {
		return query[:maxLen] + "..."
	}
	return query
}
