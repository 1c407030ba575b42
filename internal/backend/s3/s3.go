// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package s3 stores artifacts as objects in an S3 bucket. A location is
// s3://<bucket>/<prefix>.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	awsx "github.com/staranto/gridmemo/internal/aws"
	"github.com/staranto/gridmemo/internal/backend"
	"github.com/staranto/gridmemo/internal/table"
)

// Scheme served by this backend.
const Scheme = "s3"

// API is the subset of the S3 client used by the backend.
type API interface {
	s3v2.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// Connector returns the S3 client on first use.
type Connector func(ctx context.Context) (API, error)

// FromConfig connects with the shared AWS config chain.
func FromConfig(opts ...awsx.Option) Connector {
	return func(ctx context.Context) (API, error) {
		c, err := awsx.NewS3(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return c.S3, nil
	}
}

// Static is a Connector for an already built client.
func Static(api API) Connector {
	return func(context.Context) (API, error) { return api, nil }
}

// Backend is the s3:// artifact store.
type Backend struct {
	ext     string
	connect Connector

	mu  sync.Mutex
	api API
}

// Option customizes a Backend.
type Option func(*Backend)

// WithExtension overrides the artifact object suffix.
func WithExtension(ext string) Option {
	return func(b *Backend) {
		if ext != "" {
			b.ext = ext
		}
	}
}

// New returns an s3:// backend.
func New(connect Connector, opts ...Option) *Backend {
	b := &Backend{ext: table.Extension, connect: connect}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Scheme() string { return Scheme }

// Extension returns the artifact suffix.
func (b *Backend) Extension() string { return b.ext }

func (b *Backend) client(ctx context.Context, loc backend.Location) (API, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.api != nil {
		return b.api, nil
	}
	api, err := b.connect(ctx)
	if err != nil {
		return nil, backend.Unreachable("connect", loc, err)
	}
	b.api = api
	return api, nil
}

// split returns the bucket and the key prefix, with a trailing slash when
// not empty.
func split(loc backend.Location) (bucket, prefix string, err error) {
	bucket, prefix, _ = strings.Cut(strings.TrimLeft(loc.Root, "/"), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%s: missing bucket", loc)
	}
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return bucket, prefix, nil
}

// List returns the object keys directly beneath the location prefix.
func (b *Backend) List(ctx context.Context, loc backend.Location) ([]string, error) {
	bucket, prefix, err := split(loc)
	if err != nil {
		return nil, err
	}
	api, err := b.client(ctx, loc)
	if err != nil {
		return nil, err
	}

	var keys []string
	p := s3v2.NewListObjectsV2Paginator(api, &s3v2.ListObjectsV2Input{
		Bucket:    awsv2.String(bucket),
		Prefix:    awsv2.String(prefix),
		Delimiter: awsv2.String("/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, backend.Unreachable("list", loc, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, awsv2.ToString(obj.Key))
		}
	}
	log.Debugf("listed %d objects in %s", len(keys), loc)
	return keys, nil
}

// Load fetches and decodes fp's artifact.
func (b *Backend) Load(ctx context.Context, loc backend.Location, fp string) (*table.Table, error) {
	bucket, prefix, err := split(loc)
	if err != nil {
		return nil, err
	}
	api, err := b.client(ctx, loc)
	if err != nil {
		return nil, err
	}

	key := prefix + backend.ArtifactName(fp, b.ext)
	out, err := api.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", backend.ErrNotFound, bucket, key)
		}
		return nil, backend.Unreachable("load", loc, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, backend.Unreachable("load", loc, err)
	}

	t, err := table.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, err)
	}
	return t, nil
}

// Store encodes t and puts it under fp. S3 writes are atomic per object.
func (b *Backend) Store(ctx context.Context, loc backend.Location, fp string, t *table.Table) error {
	bucket, prefix, err := split(loc)
	if err != nil {
		return err
	}

	data, err := table.Marshal(t)
	if err != nil {
		return err
	}

	api, err := b.client(ctx, loc)
	if err != nil {
		return err
	}

	key := prefix + backend.ArtifactName(fp, b.ext)
	if _, err := api.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(bucket),
		Key:         awsv2.String(key),
		Body:        bytes.NewReader(data),
		ContentType: awsv2.String("application/yaml"),
	}); err != nil {
		return backend.Unreachable("store", loc, err)
	}
	log.Debugf("stored s3://%s/%s (%d rows)", bucket, key, t.Len())
	return nil
}
