package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/examiner/pkg/repository"
)

// fakeConn serves queued result sets, then a fixed one, and counts
// transaction outcomes.
type fakeConn struct {
	queue     [][][]driver.Value
	rows      [][]driver.Value
	affected  int64
	commits   int
	rollbacks int
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return &fakeStmt{c}, nil }
func (c *fakeConn) Close() error                        { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)           { return &fakeTx{c}, nil }

type fakeTx struct{ c *fakeConn }

func (t *fakeTx) Commit() error   { t.c.commits++; return nil }
func (t *fakeTx) Rollback() error { t.c.rollbacks++; return nil }

type fakeStmt struct{ c *fakeConn }

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }

func (s *fakeStmt) Exec([]driver.Value) (driver.Result, error) {
	return driver.RowsAffected(s.c.affected), nil
}

func (s *fakeStmt) Query([]driver.Value) (driver.Rows, error) {
	if len(s.c.queue) > 0 {
		next := s.c.queue[0]
		s.c.queue = s.c.queue[1:]
		return &fakeRows{data: next}, nil
	}
	return &fakeRows{data: s.c.rows}, nil
}

type fakeRows struct {
	data [][]driver.Value
	i    int
}

func (r *fakeRows) Columns() []string { return []string{"question_number"} }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.i])
	r.i++
	return nil
}

type connector struct{ c *fakeConn }

func (k connector) Connect(context.Context) (driver.Conn, error) { return k.c, nil }
func (k connector) Driver() driver.Driver                        { return nil }

func open(t *testing.T, c *fakeConn) *sql.DB {
	t.Helper()
	db := sql.OpenDB(connector{c})
	t.Cleanup(func() { db.Close() })
	return db
}

func scanNumber(s repository.Scanner) (string, error) {
	var n string
	err := s.Scan(&n)
	return n, err
}

var (
	errNotFound  = errors.New("question not found")
	errDuplicate = errors.New("question already exists")
)

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")
	foreignKey := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"foreign key violation", foreignKey, foreignKey},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.MapError(tt.err, errNotFound, errDuplicate); got != tt.want {
				t.Errorf("MapError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryMany(t *testing.T) {
	tests := []struct {
		name string
		rows [][]driver.Value
		want []string
	}{
		{"rows", [][]driver.Value{{"1a"}, {"1b"}, {"2"}}, []string{"1a", "1b", "2"}},
		{"empty", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := open(t, &fakeConn{rows: tt.rows})
			got, err := repository.QueryMany(context.Background(), db, "SELECT question_number FROM questions", nil, scanNumber)
			if err != nil {
				t.Fatalf("QueryMany: %v", err)
			}
			if got == nil || len(got) != len(tt.want) {
				t.Fatalf("QueryMany = %#v, want %#v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestQueryOneNoRows(t *testing.T) {
	db := open(t, &fakeConn{})
	_, err := repository.QueryOne(context.Background(), db, "SELECT question_number FROM questions WHERE id = $1", []any{1}, scanNumber)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
	if mapped := repository.MapError(err, errNotFound, errDuplicate); mapped != errNotFound {
		t.Errorf("mapped = %v", mapped)
	}
}

func TestExecExpectOne(t *testing.T) {
	tests := []struct {
		affected int64
		want     error
	}{
		{1, nil},
		{0, sql.ErrNoRows},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.affected), func(t *testing.T) {
			db := open(t, &fakeConn{affected: tt.affected})
			err := repository.ExecExpectOne(context.Background(), db, "DELETE FROM questions WHERE id = $1", 1)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWithTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		c := &fakeConn{affected: 1}
		db := open(t, c)

		got, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (string, error) {
			return "created", repository.ExecExpectOne(context.Background(), tx, "INSERT INTO questions DEFAULT VALUES")
		})
		if err != nil || got != "created" {
			t.Fatalf("WithTx = (%q, %v)", got, err)
		}
		if c.commits != 1 || c.rollbacks != 0 {
			t.Errorf("commits = %d, rollbacks = %d", c.commits, c.rollbacks)
		}
	})

	t.Run("rollback", func(t *testing.T) {
		c := &fakeConn{}
		db := open(t, c)

		got, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (string, error) {
			return "partial", repository.ExecExpectOne(context.Background(), tx, "DELETE FROM questions WHERE id = $1", 1)
		})
		if !errors.Is(err, sql.ErrNoRows) {
			t.Fatalf("err = %v", err)
		}
		if got != "" {
			t.Errorf("result = %q, want zero value", got)
		}
		if c.commits != 0 || c.rollbacks != 1 {
			t.Errorf("commits = %d, rollbacks = %d", c.commits, c.rollbacks)
		}
	})
}
