package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when the bucket has no object under the given id.
var ErrNotFound = errors.New("object not found")

// Object describes a blob after a completed upload.
type Object struct {
	ID       primitive.ObjectID
	Filename string
}

// GridFS stores blobs in a MongoDB GridFS bucket. Uploads and downloads are
// streamed; the bucket chunks the content itself.
type GridFS struct {
	bucket *gridfs.Bucket
}

func NewGridFS(db *mongo.Database) (*GridFS, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFS{bucket: bucket}, nil
}

// Upload streams r into the bucket under filename, tagging the stored file
// with its content type and the given metadata. The stream is closed before
// returning, so a nil error means the blob is durably written.
func (s *GridFS) Upload(ctx context.Context, filename, contentType string, meta map[string]string, r io.Reader) (Object, error) {
	doc := bson.M{"contentType": contentType}
	for k, v := range meta {
		doc[k] = v
	}

	id := primitive.NewObjectID()
	stream, err := s.bucket.OpenUploadStreamWithID(id, filename, options.GridFSUpload().SetMetadata(doc))
	if err != nil {
		return Object{}, fmt.Errorf("open upload stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	if err := stream.Close(); err != nil {
		return Object{}, fmt.Errorf("finish upload: %w", err)
	}
	return Object{ID: id, Filename: filename}, nil
}

// Open returns a streamed reader over the object's bytes.
func (s *GridFS) Open(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, error) {
	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open download stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}
	return stream, nil
}

// Delete removes an object. Only the upload path uses this, to clean up a
// blob whose record failed to persist.
func (s *GridFS) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.bucket.Delete(id); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
