package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/provas/internal/codec"
	"github.com/dmitrijs2005/provas/internal/common"
)

// S3API is the part of the S3 client the source needs.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configure an S3-compatible endpoint (AWS or MinIO).
type S3Options struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds a client with static credentials when keys are given
// and path-style addressing when a custom endpoint is used.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
	}), nil
}

// S3Source treats every "<collection>/<id>.json" object in a bucket as one
// document. Keys are listed in the lexicographic order S3 returns them.
type S3Source struct {
	client      S3API
	bucket      string
	prefix      string
	concurrency int
}

func NewS3Source(client S3API, bucket, collection string) *S3Source {
	if collection == "" {
		collection = common.DefaultCatalogCollection
	}
	return &S3Source{client: client, bucket: bucket, prefix: collection + "/", concurrency: 8}
}

func (s *S3Source) Documents(ctx context.Context) ([]codec.Document, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]codec.Document, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, key := range keys {
		g.Go(func() error {
			fields, err := s.fetch(gctx, key)
			if err != nil {
				return err
			}
			docs[i] = codec.Document{ID: s.documentID(key), Fields: fields}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *S3Source) listKeys(ctx context.Context) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var keys []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, mapS3Error(s.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// fetch returns the decoded object. An object that is not a JSON object
// yields nil fields, which the codec then drops as incomplete.
func (s *S3Source) fetch(ctx context.Context, key string) (map[string]any, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapS3Error(s.bucket, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 %s/%s: %w: %w", s.bucket, key, common.ErrNetwork, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, nil
	}
	return fields, nil
}

func (s *S3Source) documentID(key string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), ".json")
}

// transient server-side codes are reported like transport failures
var s3TransientCodes = map[string]struct{}{
	"InternalError":      {},
	"ServiceUnavailable": {},
	"SlowDown":           {},
	"RequestTimeout":     {},
}

func mapS3Error(bucket string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, transient := s3TransientCodes[apiErr.ErrorCode()]; !transient {
			return fmt.Errorf("s3 %s: %w: %w", bucket, common.ErrRemoteUnavailable, err)
		}
	}
	return fmt.Errorf("s3 %s: %w: %w", bucket, common.ErrNetwork, err)
}
