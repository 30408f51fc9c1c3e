package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"autopost/internal/config"
	"autopost/internal/logging"
)

// S3Store implements ObjectStore against Amazon S3 or a compatible endpoint.
type S3Store struct {
	client *s3.Client
	roles  RoleMap
	logger *slog.Logger
}

// NewRoleMap builds the role resolution table from configuration.
func NewRoleMap(cfg *config.Config) RoleMap {
	return RoleMap{
		RoleAssets:      cfg.Buckets.Assets,
		RoleLongVideos:  cfg.Buckets.LongVideos,
		RoleShortsReels: cfg.Buckets.ShortsReels,
		RoleConfig:      cfg.Buckets.Config,
	}
}

// NewS3Store constructs an S3-backed store using the ambient AWS credential
// chain. The role mapping is validated up front so a missing role surfaces
// at startup rather than mid-run.
func NewS3Store(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*S3Store, error) {
	roles := NewRoleMap(cfg)
	if err := roles.Validate(); err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Buckets.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Buckets.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Buckets.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Buckets.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client: client,
		roles:  roles,
		logger: logging.NewComponentLogger(logger, "storage"),
	}, nil
}

// List returns the objects under prefix within the role's bucket.
func (s *S3Store) List(ctx context.Context, role Role, prefix string) ([]Object, error) {
	bucket, err := s.roles.Bucket(role)
	if err != nil {
		return nil, err
	}

	var objects []Object
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
		}
		for _, item := range page.Contents {
			key := aws.ToString(item.Key)
			if key == "" || key == prefix {
				continue
			}
			objects = append(objects, Object{
				Role: role,
				Key:  key,
				Size: aws.ToInt64(item.Size),
			})
		}
	}
	return objects, nil
}

// Download fetches an object into localPath.
func (s *S3Store) Download(ctx context.Context, role Role, key, localPath string) error {
	bucket, err := s.roles.Bucket(role)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, result.Body); err != nil {
		return fmt.Errorf("write %s: %w", localPath, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	s.logger.Debug("downloaded object",
		logging.String(logging.FieldRole, string(role)),
		logging.String(logging.FieldKey, key),
	)
	return nil
}

// Upload stores localPath under key in the role's bucket.
func (s *S3Store) Upload(ctx context.Context, role Role, key, localPath string) error {
	bucket, err := s.roles.Bucket(role)
	if err != nil {
		return err
	}
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}

	s.logger.Debug("uploaded object",
		logging.String(logging.FieldRole, string(role)),
		logging.String(logging.FieldKey, key),
	)
	return nil
}

var _ ObjectStore = (*S3Store)(nil)
