package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pathmentor/learning-app/internal/config"
	"pathmentor/learning-app/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// s3Archiver implements the PathArchiver interface using an S3-compatible
// backend. Every snapshot overwrites the previous one for the same path.
type s3Archiver struct {
	client     *s3.Client
	bucketName string
	log        *logrus.Logger
}

// NewS3Archiver creates a new S3 archive instance.
func NewS3Archiver(cfg config.ArchiveConfig, log *logrus.Logger) (PathArchiver, error) {
	// Custom resolver for S3-compatible endpoints (like MinIO, DigitalOcean Spaces)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fallback to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		log.WithError(err).Error("failed to load AWS SDK config for archive")
		return nil, err
	}

	// Force path-style addressing required by most S3-compatible services (like MinIO)
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	log.WithFields(logrus.Fields{
		"endpoint": cfg.Endpoint,
		"bucket":   cfg.BucketName,
	}).Info("path archive initialized")

	return &s3Archiver{
		client:     s3Client,
		bucketName: cfg.BucketName,
		log:        log,
	}, nil
}

// Snapshot uploads the learning path as a JSON object keyed by user and topic.
func (a *s3Archiver) Snapshot(ctx context.Context, userID string, path *domain.LearningPath) error {
	data, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("marshal path snapshot: %w", err)
	}

	key := snapshotKey(userID, path.Topic)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		a.log.WithError(err).WithField("key", key).Error("failed to upload path snapshot")
		return err
	}

	a.log.WithField("key", key).Debug("uploaded path snapshot")
	return nil
}

// snapshotKey flattens the topic into a stable object key. Topics are
// user-supplied free text, so spaces and slashes are normalized away.
func snapshotKey(userID, topic string) string {
	slug := strings.ToLower(topic)
	slug = strings.ReplaceAll(slug, "/", "-")
	slug = strings.ReplaceAll(slug, " ", "-")
	return fmt.Sprintf("paths/%s/%s.json", userID, slug)
}
