package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findteam/identity-service/internal/domain"
)

// fakeRow scans a fixed list of values into the destinations.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type call struct {
	sql  string
	args []any
}

// fakeRows iterates over fixed rows for multi-row queries.
type fakeRows struct {
	pgx.Rows
	rows    []fakeRow
	pos     int
	scanErr error
	closed  bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	return r.rows[r.pos-1].Scan(dest...)
}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Close() { r.closed = true }

// fakeQuerier records statements and replies with queued rows.
type fakeQuerier struct {
	calls    []call
	rows     []fakeRow
	results  []*fakeRows
	queryErr error
	execTag  pgconn.CommandTag
	execErr  error
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.calls = append(q.calls, call{sql: sql, args: args})
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	if len(q.results) == 0 {
		return &fakeRows{}, nil
	}
	rows := q.results[0]
	q.results = q.results[1:]
	return rows, nil
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.calls = append(q.calls, call{sql: sql, args: args})
	return q.execTag, q.execErr
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.calls = append(q.calls, call{sql: sql, args: args})
	if len(q.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	row := q.rows[0]
	q.rows = q.rows[1:]
	return row
}

func (q *fakeQuerier) lastSQL() string {
	if len(q.calls) == 0 {
		return ""
	}
	return strings.Join(strings.Fields(q.calls[len(q.calls)-1].sql), " ")
}

func TestFindByUsernameOrEmail(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{{values: []any{int64(7), "alice", "a@x.com", true}}}}
	repo := NewUserRepository(q)

	got, err := repo.FindByUsernameOrEmail(context.Background(), "Alice", "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, &domain.ExistingUser{ID: 7, Username: "alice", Email: "a@x.com", Registered: true}, got)
	assert.Regexp(t, regexp.MustCompile(`WHERE lower\(username\) = lower\(\$1\) OR lower\(email\) = \$2`), q.lastSQL())
	assert.Equal(t, []any{"Alice", "a@x.com"}, q.calls[0].args)
}

func TestFindByUsernameOrEmail_NotFound(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{})

	_, err := repo.FindByUsernameOrEmail(context.Background(), "ghost", "g@x.com")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUser(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{{values: []any{int64(42)}}}}
	repo := NewUserRepository(q)
	position := domain.PositionBackend

	id, err := repo.Create(context.Background(), &domain.User{
		Username:     "alice",
		PasswordHash: "hash",
		Email:        "a@x.com",
		Position:     &position,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Contains(t, q.lastSQL(), "INSERT INTO users")
	require.Len(t, q.calls[0].args, 4)
	assert.Equal(t, "backend", *(q.calls[0].args[3].(*string)))
}

func TestCreateUser_NilPosition(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{{values: []any{int64(1)}}}}
	repo := NewUserRepository(q)

	_, err := repo.Create(context.Background(), &domain.User{Username: "bob", Email: "b@x.com"})

	require.NoError(t, err)
	assert.Nil(t, q.calls[0].args[3])
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	cases := map[string]error{
		emailIndex:    ErrEmailRegistered,
		usernameIndex: ErrUsernameTaken,
	}
	for constraint, want := range cases {
		t.Run(constraint, func(t *testing.T) {
			q := &fakeQuerier{rows: []fakeRow{{err: &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint}}}}
			repo := NewUserRepository(q)

			_, err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "a@x.com"})

			assert.ErrorIs(t, err, want)
		})
	}
}

func TestCreateUser_OtherDBError(t *testing.T) {
	boom := errors.New("db down")
	q := &fakeQuerier{rows: []fakeRow{{err: boom}}}
	repo := NewUserRepository(q)

	_, err := repo.Create(context.Background(), &domain.User{Username: "alice"})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "create user")
}

func TestClaimAnonymous(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{{values: []any{int64(9)}}}}
	repo := NewUserRepository(q)

	id, err := repo.ClaimAnonymous(context.Background(), 9, &domain.User{Username: "bob", PasswordHash: "h"})

	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.Contains(t, q.lastSQL(), "email = lower(email)")
	assert.Contains(t, q.lastSQL(), "WHERE id = $4 AND registered = FALSE")
	assert.Equal(t, int64(9), q.calls[0].args[3])
}

func TestClaimAnonymous_AlreadyClaimed(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{})

	_, err := repo.ClaimAnonymous(context.Background(), 9, &domain.User{Username: "bob"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCredentials(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{
		{values: []any{int64(3), "hash", true, false}},
		{values: []any{int64(4), "hash2", true, true}},
	}}
	repo := NewUserRepository(q)

	byName, err := repo.GetCredentialsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, &domain.Credentials{ID: 3, PasswordHash: "hash", Registered: true}, byName)
	assert.Contains(t, q.lastSQL(), "lower(username) = lower($1)")

	byEmail, err := repo.GetCredentialsByEmail(context.Background(), "B@X.com")
	require.NoError(t, err)
	assert.True(t, byEmail.Verified)
	assert.Contains(t, q.lastSQL(), "lower(email) = lower($1)")
}

func TestGetCredentials_NotFound(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{})

	_, err := repo.GetCredentialsByEmail(context.Background(), "none@x.com")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsVerified(t *testing.T) {
	q := &fakeQuerier{rows: []fakeRow{{values: []any{true}}}}
	repo := NewUserRepository(q)

	verified, err := repo.IsVerified(context.Background(), 5)

	require.NoError(t, err)
	assert.True(t, verified)

	_, err = repo.IsVerified(context.Background(), 6)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkVerified(t *testing.T) {
	q := &fakeQuerier{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := NewUserRepository(q)

	require.NoError(t, repo.MarkVerified(context.Background(), 5))
	assert.Equal(t, "UPDATE users SET verified = TRUE WHERE id = $1 AND verified = FALSE", q.lastSQL())

	q.execErr = errors.New("db down")
	assert.Error(t, repo.MarkVerified(context.Background(), 7))
}

func TestMarkVerified_LosesRace(t *testing.T) {
	// A concurrent verification already flipped the flag, so the guarded update matches nothing.
	q := &fakeQuerier{execTag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewUserRepository(q)

	err := repo.MarkVerified(context.Background(), 6)

	assert.ErrorIs(t, err, ErrAlreadyVerified)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetProfile(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	position := "designer"
	q := &fakeQuerier{rows: []fakeRow{{values: []any{int64(5), "carol", "c@x.com", &position, true, &created}}}}
	repo := NewUserRepository(q)

	profile, err := repo.GetProfile(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, "carol", profile.Username)
	require.NotNil(t, profile.Position)
	assert.Equal(t, domain.PositionDesigner, *profile.Position)
	assert.Equal(t, created, profile.CreatedAt)
}

func TestVerificationCodeCreate(t *testing.T) {
	q := &fakeQuerier{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := NewVerificationCodeRepository(q)

	require.NoError(t, repo.Create(context.Background(), 5, "abc"))
	assert.Equal(t, []any{int64(5), "abc"}, q.calls[0].args)

	q.execErr = errors.New("db down")
	assert.Error(t, repo.Create(context.Background(), 5, "abc"))
}

func TestVerificationCodeFind(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	q := &fakeQuerier{rows: []fakeRow{
		{values: []any{int64(5), &created}},
		{values: []any{int64(6), nil}},
	}}
	repo := NewVerificationCodeRepository(q)

	vc, err := repo.Find(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, &domain.VerificationCode{Code: "abc", UserID: 5, CreatedAt: created}, vc)

	vc, err = repo.Find(context.Background(), "def")
	require.NoError(t, err)
	assert.True(t, vc.CreatedAt.IsZero())

	_, err = repo.Find(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
