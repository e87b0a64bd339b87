//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/objectstore"
)

// ObjectReader is the subset of the S3 API used to read input objects.
type ObjectReader interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads records from objects below an S3 prefix.
type S3 struct {
	client      ObjectReader
	loc         objectstore.Location
	concurrency int
}

// NewS3 creates a source reading below loc.
func NewS3(client ObjectReader, loc objectstore.Location, concurrency int) *S3 {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &S3{client: client, loc: loc, concurrency: concurrency}
}

// Root returns the location URI.
func (s *S3) Root() string {
	return s.loc.String()
}

// Read implements Source. Keys are matched against the pattern with the
// same rules as filepath.Glob, so a star never crosses a slash.
func (s *S3) Read(ctx context.Context, pattern string) ([]Record, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	keys, err := s.list(ctx, pattern)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s%s", ErrNoMatch, s.loc.String(), pattern)
	}

	logging.Debug().
		Str("root", s.loc.String()).
		Str("pattern", pattern).
		Int("objects", len(keys)).
		Msg("Reading objects")

	perObject := make([][]Record, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, key := range keys {
		g.Go(func() error {
			recs, err := s.readObject(gctx, key)
			if err != nil {
				return err
			}
			perObject[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return flatten(perObject), nil
}

func (s *S3) list(ctx context.Context, pattern string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.loc.Bucket),
		Prefix: aws.String(s.loc.Prefix + literalPrefix(pattern)),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", s.loc.String(), err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			rel := strings.TrimPrefix(key, s.loc.Prefix)
			if ok, _ := path.Match(pattern, rel); ok {
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *S3) readObject(ctx context.Context, key string) ([]Record, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.loc.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.loc.Bucket, key, err)
	}
	defer out.Body.Close()

	return splitRecords(strings.TrimPrefix(key, s.loc.Prefix), out.Body)
}

// literalPrefix returns the directories of pattern before the first
// segment containing a meta character.
func literalPrefix(pattern string) string {
	var b strings.Builder
	for _, seg := range strings.SplitAfter(pattern, "/") {
		if !strings.HasSuffix(seg, "/") || strings.ContainsAny(seg, `*?[\`) {
			break
		}
		b.WriteString(seg)
	}
	return b.String()
}
