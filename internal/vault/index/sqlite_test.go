package index

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/scampozano/deepurge/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := InitDatabase(context.Background(), "file:index_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM records`)
		_ = db.Close()
	})
	return db
}

func sampleRecord(name string) *Record {
	return &Record{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Name:       name,
		ObjectID:   "blob-" + name,
		Key:        []byte{1, 2, 3},
		Nonce:      []byte{4, 5, 6},
		PlainSize:  10,
		CipherSize: 26,
		Digest:     "abc",
		Kind:       KindObject,
	}
}

func TestSQLiteRepository_InsertAndGetAll(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, sampleRecord("a.txt")))
	require.NoError(t, repo.Insert(ctx, sampleRecord("b.txt")))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a.txt", all[0].Name)
	assert.Equal(t, []byte{1, 2, 3}, all[0].Key)
}

func TestSQLiteRepository_GetByObjectID(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	rec := sampleRecord("report.pdf")
	require.NoError(t, repo.Insert(ctx, rec))

	got, err := repo.GetByObjectID(ctx, rec.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.Digest, got.Digest)

	_, err = repo.GetByObjectID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteRepository_DuplicateIDRejected(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	rec := sampleRecord("dup.txt")
	require.NoError(t, repo.Insert(ctx, rec))
	assert.Error(t, repo.Insert(ctx, rec))
}

func TestSQLiteRepository_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO records").WillReturnError(errors.New("disk full"))

	repo := NewSQLiteRepository(db)
	err = repo.Insert(context.Background(), sampleRecord("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert record")
	require.NoError(t, mock.ExpectationsWereMet())
}
