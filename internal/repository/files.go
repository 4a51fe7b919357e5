package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// Upload stores data as-is in the files table.
func (s *Store) Upload(ctx context.Context, bucket, name string, data []byte) (*model.FileRef, error) {
	ref := &model.FileRef{
		ID:        uuid.New().String(),
		Bucket:    bucket,
		Name:      name,
		MimeType:  http.DetectContentType(data),
		Size:      int64(len(data)),
		CreatedAt: s.timestamp(),
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO files (bucket, id, name, mime_type, size, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ref.Bucket, ref.ID, ref.Name, ref.MimeType, ref.Size, data, ref.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}
	return ref, nil
}

// Download returns a stored file.
func (s *Store) Download(ctx context.Context, bucket, id string) (*model.FileRef, []byte, error) {
	ref := model.FileRef{Bucket: bucket, ID: id}
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT name, mime_type, size, data, created_at FROM files WHERE bucket = $1 AND id = $2`,
		bucket, id,
	).Scan(&ref.Name, &ref.MimeType, &ref.Size, &data, &ref.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, gateway.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get file: %w", err)
	}
	return &ref, data, nil
}

// ViewURL is the shell URL that serves the file.
func (s *Store) ViewURL(bucket, id string) string {
	return gateway.FileViewURL(s.publicURL, bucket, id)
}
