package service

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// VideoService reads the promotional feed.
type VideoService struct {
	deps Deps
}

// List returns every video, newest first. Failures read as an empty feed.
func (s *VideoService) List(ctx context.Context) []model.Video {
	gw := s.deps.Gateway
	docs, err := gw.Documents.List(ctx, gw.Collections.Videos, gateway.OrderDesc(gateway.FieldCreatedAt))
	if err != nil {
		s.deps.Log.Error().Err(err).Msg("list videos")
		return []model.Video{}
	}
	out := make([]model.Video, len(docs))
	for i, d := range docs {
		out[i] = gateway.DecodeVideo(d)
	}
	return out
}

// FileService serves uploaded files back to the shell.
type FileService struct {
	deps Deps
}

// Download returns a stored file and its metadata.
func (s *FileService) Download(ctx context.Context, bucket, id string) (*model.FileRef, []byte, error) {
	ref, data, err := s.deps.Gateway.Files.Download(ctx, bucket, id)
	if err != nil {
		return nil, nil, fmt.Errorf("download %s/%s: %w", bucket, id, err)
	}
	return ref, data, nil
}
