package sink

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/objectstore"
)

const (
	uploadConcurrency = 8
	deleteBatchSize   = 1000
)

// ObjectWriter is the subset of the S3 API used to publish tables.
type ObjectWriter interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3 publishes parquet tables to an S3 prefix. Each table is built
// locally, uploaded under <prefix>/<table>/, and keys left over from
// earlier runs are deleted afterwards.
type S3 struct {
	client  ObjectWriter
	loc     objectstore.Location
	scratch string
	local   *Parquet
}

// NewS3 creates an S3 sink publishing below loc.
func NewS3(client ObjectWriter, loc objectstore.Location, opts ParquetOptions) (*S3, error) {
	scratch, err := os.MkdirTemp("", "pgedge-etl-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	local, err := NewParquet(scratch, opts)
	if err != nil {
		_ = os.RemoveAll(scratch)
		return nil, err
	}
	return &S3{client: client, loc: loc, scratch: scratch, local: local}, nil
}

// Write implements Sink.
func (s *S3) Write(ctx context.Context, t *Table) error {
	if err := s.local.Write(ctx, t); err != nil {
		return err
	}
	dir := s.local.TableDir(t.Name)
	defer os.RemoveAll(dir)

	files, err := listFiles(dir)
	if err != nil {
		return err
	}

	prefix := s.loc.Key(t.Name + "/")
	uploaded := make(map[string]bool, len(files)+1)
	for _, rel := range files {
		uploaded[prefix+rel] = true
	}
	uploaded[prefix+SuccessMarker] = true

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for _, rel := range files {
		g.Go(func() error {
			return s.upload(gctx, filepath.Join(dir, filepath.FromSlash(rel)), prefix+rel)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// The marker is published once every data file is in place.
	if err := s.upload(ctx, filepath.Join(dir, SuccessMarker), prefix+SuccessMarker); err != nil {
		return err
	}

	stale, err := s.staleKeys(ctx, prefix, uploaded)
	if err != nil {
		return err
	}
	if err := s.deleteKeys(ctx, stale); err != nil {
		return err
	}

	logging.Debug().
		Str("table", t.Name).
		Str("prefix", prefix).
		Int("uploaded", len(files)).
		Int("pruned", len(stale)).
		Msg("Published table to S3")

	return nil
}

// Close implements Sink.
func (s *S3) Close() error {
	return os.RemoveAll(s.scratch)
}

func (s *S3) upload(ctx context.Context, file, key string) error {
	fh, err := os.Open(file)
	if err != nil {
		return err
	}
	defer fh.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.loc.Bucket),
		Key:    aws.String(key),
		Body:   fh,
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.loc.Bucket, key, err)
	}
	return nil
}

func (s *S3) staleKeys(ctx context.Context, prefix string, keep map[string]bool) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.loc.Bucket),
		Prefix: aws.String(prefix),
	})

	var stale []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.loc.Bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !keep[key] {
				stale = append(stale, key)
			}
		}
	}
	return stale, nil
}

func (s *S3) deleteKeys(ctx context.Context, keys []string) error {
	for off := 0; off < len(keys); off += deleteBatchSize {
		batch := keys[off:min(off+deleteBatchSize, len(keys))]
		ids := make([]types.ObjectIdentifier, len(batch))
		for i, k := range batch {
			ids[i] = types.ObjectIdentifier{Key: aws.String(k)}
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.loc.Bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to delete stale objects: %w", err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return fmt.Errorf("failed to delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message))
		}
	}
	return nil
}

// listFiles returns the slash separated paths of the data files below
// dir.
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel != SuccessMarker {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	return files, nil
}
