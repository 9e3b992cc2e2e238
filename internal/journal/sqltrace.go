package journal

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// traceConnector opens the sqlite3 driver and wraps every connection so the
// journal's SQL shows up in the debug log. Wired by Open when the log level
// is debug.
type traceConnector struct {
	dsn    string
	logger *slog.Logger
}

type traceConn struct {
	conn   driver.Conn
	logger *slog.Logger
}

type traceStmt struct {
	stmt   driver.Stmt
	query  string
	logger *slog.Logger
}

func newTraceConnector(dsn string, logger *slog.Logger) driver.Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &traceConnector{dsn: dsn, logger: logger}
}

func (c *traceConnector) Driver() driver.Driver {
	return &traceDriver{}
}

func (c *traceConnector) Connect(ctx context.Context) (driver.Conn, error) {
	underlying := &sqlite3.SQLiteDriver{}
	conn, err := underlying.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &traceConn{conn: conn, logger: c.logger}, nil
}

// traceDriver satisfies Connector.Driver(); opening is done via OpenDB(connector).
type traceDriver struct{}

func (d *traceDriver) Open(name string) (driver.Conn, error) {
	return nil, fmt.Errorf("journal trace: use sql.OpenDB, not sql.Open")
}

func (c *traceConn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &traceStmt{stmt: stmt, query: query, logger: c.logger}, nil
}

func (c *traceConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if prep, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err := prep.PrepareContext(ctx, query)
		if err != nil {
			return nil, err
		}
		return &traceStmt{stmt: stmt, query: query, logger: c.logger}, nil
	}
	return c.Prepare(query)
}

func (c *traceConn) Close() error {
	return c.conn.Close()
}

func (c *traceConn) Begin() (driver.Tx, error) {
	//nolint:staticcheck // SA1019 – required when underlying conn does not implement ConnBeginTx
	return c.conn.Begin()
}

func (c *traceConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if beginTx, ok := c.conn.(driver.ConnBeginTx); ok {
		return beginTx.BeginTx(ctx, opts)
	}
	//nolint:staticcheck // SA1019 – fallback when underlying conn does not implement ConnBeginTx
	return c.conn.Begin()
}

func (s *traceStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.logQuery("exec", args)
	//nolint:staticcheck // SA1019 – required when underlying stmt does not implement StmtExecContext
	return s.stmt.Exec(args)
}

func (s *traceStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	s.logQuery("exec", namedValuesToSlice(args))
	execCtx, ok := s.stmt.(driver.StmtExecContext)
	if !ok {
		vals := namedValuesToValues(args)
		//nolint:staticcheck // SA1019 – fallback when underlying stmt does not implement StmtExecContext
		return s.stmt.Exec(vals)
	}
	return execCtx.ExecContext(ctx, args)
}

func (s *traceStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.logQuery("query", args)
	//nolint:staticcheck // SA1019 – required when underlying stmt does not implement StmtQueryContext
	return s.stmt.Query(args)
}

func (s *traceStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	s.logQuery("query", namedValuesToSlice(args))
	queryCtx, ok := s.stmt.(driver.StmtQueryContext)
	if !ok {
		vals := namedValuesToValues(args)
		//nolint:staticcheck // SA1019 – fallback when underlying stmt does not implement StmtQueryContext
		return s.stmt.Query(vals)
	}
	return queryCtx.QueryContext(ctx, args)
}

func (s *traceStmt) Close() error {
	return s.stmt.Close()
}

// NumInput implements driver.Stmt (optional); -1 means unknown.
func (s *traceStmt) NumInput() int {
	if n, ok := s.stmt.(interface{ NumInput() int }); ok {
		return n.NumInput()
	}
	return -1
}

func (s *traceStmt) logQuery(op string, args interface{}) {
	s.logger.Debug("journal sql",
		"op", op,
		"sql", s.query,
		"args", args,
	)
}

func namedValuesToSlice(args []driver.NamedValue) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		if a.Name != "" {
			out[i] = a.Name + "=" + formatArg(a.Value)
		} else {
			out[i] = formatArg(a.Value)
		}
	}
	return out
}

func namedValuesToValues(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i := range args {
		out[i] = args[i].Value
	}
	return out
}

func formatArg(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
