package exports

import (
	"context"
	"io"
)

type AWSRepository interface {
	GetPresignedURL(ctx context.Context, bucket, key string) (string, error)
	UploadArtifact(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error)
	RemoveObject(ctx context.Context, bucket, key string) error
}
