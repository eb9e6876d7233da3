// Package storagetest поднимает временную SQLite-базу со схемой сервиса для тестов.
package storagetest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/RealTimGFM/ScheduleBooker/pkg/dbmetrics"
)

// Schema схема БД в диалекте SQLite
const Schema = `
CREATE TABLE services (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	category      TEXT NOT NULL DEFAULT '',
	duration_min  INTEGER NOT NULL CHECK (duration_min > 0),
	price         REAL NOT NULL DEFAULT 0,
	price_is_from BOOLEAN NOT NULL DEFAULT 0,
	price_label   TEXT,
	is_active     BOOLEAN NOT NULL DEFAULT 1,
	is_popular    BOOLEAN NOT NULL DEFAULT 0,
	sort_order    INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE barbers (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	phone      TEXT,
	is_active  BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE bookings (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          INTEGER,
	barber_id        INTEGER REFERENCES barbers (id),
	service_id       INTEGER NOT NULL REFERENCES services (id),
	customer_name    TEXT NOT NULL,
	customer_phone   TEXT,
	customer_email   TEXT,
	phone_digits     TEXT,
	email_normalized TEXT,
	start_time       TIMESTAMP NOT NULL,
	end_time         TIMESTAMP NOT NULL,
	notes            TEXT,
	status           TEXT NOT NULL CHECK (status IN ('booked', 'cancelled')),
	booking_code     TEXT NOT NULL UNIQUE,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL,
	CHECK (end_time > start_time)
);

CREATE INDEX idx_bookings_start_time ON bookings (start_time);
CREATE INDEX idx_bookings_phone_digits ON bookings (phone_digits);
CREATE INDEX idx_bookings_email_normalized ON bookings (email_normalized);

CREATE TABLE cancellations (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	booking_id     INTEGER NOT NULL REFERENCES bookings (id),
	booking_code   TEXT NOT NULL,
	customer_name  TEXT NOT NULL,
	customer_phone TEXT,
	customer_email TEXT,
	start_time     TIMESTAMP NOT NULL,
	cancelled_by   TEXT NOT NULL CHECK (cancelled_by IN ('customer', 'admin')),
	cancelled_at   TIMESTAMP NOT NULL
);
`

// NewSQLite создает временную БД в файле, применяет схему и закрывает её по окончании теста
func NewSQLite(t testing.TB) *dbmetrics.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schedulebooker.db")
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on", path)

	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err)

	return dbmetrics.Wrap(db, nil)
}

var seededAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// SeedService добавляет услугу и возвращает её ID
func SeedService(t testing.TB, db dbmetrics.DBExecutor, name string, durationMin int, active bool) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO services (name, category, duration_min, price, is_active, created_at, updated_at)
		 VALUES ($1, 'Haircut', $2, 15, $3, $4, $4) RETURNING id`,
		name, durationMin, active, seededAt,
	).Scan(&id)
	require.NoError(t, err)

	return id
}

// SeedBarber добавляет мастера и возвращает его ID
func SeedBarber(t testing.TB, db dbmetrics.DBExecutor, name string, active bool) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO barbers (name, is_active, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id`,
		name, active, seededAt,
	).Scan(&id)
	require.NoError(t, err)

	return id
}
