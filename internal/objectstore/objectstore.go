//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package objectstore builds S3 clients and parses s3:// locations.
package objectstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/pkg/version"
)

const defaultRegion = "us-west-2"

// Config holds the connection settings for S3 compatible storage.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	EndpointURL     string
	ForcePathStyle  bool
}

// Validate checks that static credentials are given in pairs.
func (c Config) Validate() error {
	if c.AccessKeyID != "" && c.SecretAccessKey == "" {
		return fmt.Errorf("access_key_id set without secret_access_key")
	}
	if c.AccessKeyID == "" && c.SecretAccessKey != "" {
		return fmt.Errorf("secret_access_key set without access_key_id")
	}
	return nil
}

// Location is a parsed s3://bucket/prefix URI.
type Location struct {
	Bucket string
	Prefix string
}

// IsS3 reports whether uri points at S3. Hadoop style s3a:// and s3n://
// schemes are accepted as aliases.
func IsS3(uri string) bool {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return false
	}
	switch strings.ToLower(scheme) {
	case "s3", "s3a", "s3n":
		return true
	}
	return false
}

// ParseLocation parses an S3 URI. The prefix never starts with a slash
// and, when not empty, always ends with one.
func ParseLocation(uri string) (Location, error) {
	if !IsS3(uri) {
		return Location{}, fmt.Errorf("not an s3 location: %s", uri)
	}
	_, rest, _ := strings.Cut(uri, "://")
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("missing bucket in %s", uri)
	}
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return Location{Bucket: bucket, Prefix: prefix}, nil
}

// Key joins the location prefix and a relative key.
func (l Location) Key(rel string) string {
	return l.Prefix + strings.TrimPrefix(rel, "/")
}

// String returns the URI form.
func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// NewClient creates an S3 client. Static credentials are used when set,
// otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithAppID(version.AppID()),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	logging.Debug().
		Str("region", region).
		Str("endpoint", cfg.EndpointURL).
		Bool("static_credentials", cfg.AccessKeyID != "").
		Msg("Creating S3 client")

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}
