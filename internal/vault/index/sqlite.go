package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/scampozano/deepurge/internal/common"
	"github.com/scampozano/deepurge/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec *Record) error {
	query := `INSERT INTO records (id, created_at, name, object_id, key, nonce, plain_size, cipher_size, digest, kind)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.CreatedAt, rec.Name, rec.ObjectID, rec.Key, rec.Nonce,
		rec.PlainSize, rec.CipherSize, rec.Digest, rec.Kind)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*Record, error) {
	query := `select id, created_at, name, object_id, key, nonce, plain_size, cipher_size, digest, kind
			from records order by created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error selecting records: %w", err)
	}
	defer rows.Close()

	var result []*Record

	for rows.Next() {
		item := &Record{}
		err := rows.Scan(&item.ID, &item.CreatedAt, &item.Name, &item.ObjectID,
			&item.Key, &item.Nonce, &item.PlainSize, &item.CipherSize, &item.Digest, &item.Kind)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLiteRepository) GetByObjectID(ctx context.Context, objectID string) (*Record, error) {
	query := `select id, created_at, name, object_id, key, nonce, plain_size, cipher_size, digest, kind
			from records where object_id=?`

	row := r.db.QueryRowContext(ctx, query, objectID)

	rec := &Record{}
	err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.Name, &rec.ObjectID,
		&rec.Key, &rec.Nonce, &rec.PlainSize, &rec.CipherSize, &rec.Digest, &rec.Kind)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", objectID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select record: %w", err)
	}

	return rec, nil
}
