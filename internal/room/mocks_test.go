package room

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockDB implements DB interface for testing.
type MockDB struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTxFunc  func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return nil, nil
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{}
}

func (m *MockDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if m.BeginTxFunc != nil {
		return m.BeginTxFunc(ctx, txOptions)
	}
	return &MockTx{}, nil
}

// MockRow implements pgx.Row
type MockRow struct {
	ScanFunc func(dest ...any) error
}

func (m *MockRow) Scan(dest ...any) error {
	if m.ScanFunc != nil {
		return m.ScanFunc(dest...)
	}
	return nil
}

// MockTx implements pgx.Tx
type MockTx struct {
	pgx.Tx // Embed to satisfy interface; unchecked methods will panic if called

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (m *MockTx) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTx) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

func (m *MockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{}
}

func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return nil, nil
}

// scanInto fills the full room column list in scanRoom's order.
func scanInto(r Room) func(dest ...any) error {
	return func(dest ...any) error {
		hostRaw, err := json.Marshal(r.Host)
		if err != nil {
			return err
		}
		memRaw, err := json.Marshal(r.Members)
		if err != nil {
			return err
		}
		qRaw, err := json.Marshal(r.Queue)
		if err != nil {
			return err
		}
		var npRaw []byte
		if r.NowPlaying != nil {
			npRaw, err = json.Marshal(r.NowPlaying)
			if err != nil {
				return err
			}
		}

		*dest[0].(*string) = r.ID
		*dest[1].(*string) = r.Name
		*dest[2].(*string) = r.PasswordHash
		*dest[3].(*string) = r.HostUserID
		*dest[4].(*[]byte) = hostRaw
		*dest[5].(*[]byte) = memRaw
		*dest[6].(*[]byte) = qRaw
		*dest[7].(*[]byte) = npRaw
		*dest[8].(*bool) = r.IsPublic
		*dest[9].(*time.Time) = r.CreatedAt
		return nil
	}
}

// roomDB serves a fixed room row for every SELECT and records writes.
type roomDB struct {
	MockDB

	room     Room
	execSQL  []string
	txExecs  []string
	beginCnt int
}

func newRoomDB(r Room) *roomDB {
	db := &roomDB{room: r}
	db.QueryRowFunc = func(ctx context.Context, sql string, args ...any) pgx.Row {
		switch {
		case strings.Contains(sql, "RETURNING created_at"):
			return &MockRow{ScanFunc: func(dest ...any) error {
				*dest[0].(*time.Time) = db.room.CreatedAt
				return nil
			}}
		case strings.Contains(sql, "RETURNING is_public"):
			return &MockRow{ScanFunc: func(dest ...any) error {
				db.room.IsPublic = !db.room.IsPublic
				*dest[0].(*bool) = db.room.IsPublic
				return nil
			}}
		default:
			return &MockRow{ScanFunc: scanInto(db.room)}
		}
	}
	db.ExecFunc = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		db.execSQL = append(db.execSQL, sql)
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	db.BeginTxFunc = func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
		db.beginCnt++
		return &MockTx{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &MockRow{ScanFunc: func(dest ...any) error {
					// Single-column reads inside the member/queue transactions.
					var raw []byte
					var err error
					if strings.Contains(sql, "SELECT members") {
						raw, err = json.Marshal(db.room.Members)
					} else {
						raw, err = json.Marshal(db.room.Queue)
					}
					if err != nil {
						return err
					}
					*dest[0].(*[]byte) = raw
					return nil
				}}
			},
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				db.txExecs = append(db.txExecs, sql)
				return pgconn.NewCommandTag("UPDATE 1"), nil
			},
		}, nil
	}
	return db
}

// writes reports whether any write statement reached the database.
func (db *roomDB) writes() int {
	return len(db.execSQL) + len(db.txExecs)
}

// noRowsDB simulates an empty table: every row scan reports pgx.ErrNoRows.
func noRowsDB() *MockDB {
	return &MockDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &MockRow{ScanFunc: func(dest ...any) error {
				return pgx.ErrNoRows
			}}
		},
	}
}
