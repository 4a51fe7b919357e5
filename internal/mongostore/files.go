package mongostore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

type fileDoc struct {
	ID        string    `bson:"_id"`
	Bucket    string    `bson:"bucket"`
	Name      string    `bson:"name"`
	MimeType  string    `bson:"mimeType"`
	Size      int64     `bson:"size"`
	Data      []byte    `bson:"data"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d fileDoc) ref() *model.FileRef {
	return &model.FileRef{
		ID:        d.ID,
		Bucket:    d.Bucket,
		Name:      d.Name,
		MimeType:  d.MimeType,
		Size:      d.Size,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// Upload stores data inline. Documents are capped at 16MB, which is well
// above the shell's upload limit.
func (s *Store) Upload(ctx context.Context, bucket, name string, data []byte) (*model.FileRef, error) {
	doc := fileDoc{
		ID:        uuid.New().String(),
		Bucket:    bucket,
		Name:      name,
		MimeType:  http.DetectContentType(data),
		Size:      int64(len(data)),
		Data:      data,
		CreatedAt: s.timestamp(),
	}
	if _, err := s.db.Collection(filesColl).InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}
	return doc.ref(), nil
}

func (s *Store) Download(ctx context.Context, bucket, id string) (*model.FileRef, []byte, error) {
	var doc fileDoc
	err := s.db.Collection(filesColl).FindOne(ctx, bson.M{"_id": id, "bucket": bucket}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, gateway.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get file: %w", err)
	}
	return doc.ref(), doc.Data, nil
}

func (s *Store) ViewURL(bucket, id string) string {
	return gateway.FileViewURL(s.publicURL, bucket, id)
}
