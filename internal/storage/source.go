package storage

import (
	"context"
	"fmt"
	"os"
)

// SourceReader resolves an ingest source path to its raw bytes. Plain
// paths read from disk; s3:// URIs fetch from object storage when an
// S3 client is configured.
type SourceReader struct {
	s3 *S3Client
}

// NewSourceReader creates a SourceReader. The S3 client may be nil, in
// which case s3:// paths are rejected with a configuration hint.
func NewSourceReader(s3 *S3Client) *SourceReader {
	return &SourceReader{s3: s3}
}

// Read returns the contents of the source at path.
func (r *SourceReader) Read(ctx context.Context, path string) ([]byte, error) {
	if IsS3URI(path) {
		if r.s3 == nil {
			return nil, fmt.Errorf("s3 source %s requires DOCVEC_S3_ACCESS_KEY_ID and DOCVEC_S3_SECRET_ACCESS_KEY", path)
		}
		bucket, key, err := ParseS3URI(path)
		if err != nil {
			return nil, err
		}
		return r.s3.FetchObject(ctx, bucket, key)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	return data, nil
}
