// Package media archives identity scan images in S3-compatible object
// storage (MinIO in development).
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/config"
	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/metrics"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ObjectPutter is the part of the S3 client the archive writes with.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PresignExpiry is the lifetime of download links.
const PresignExpiry = 15 * time.Minute

var dataURLPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg);base64,`)

// Archive stores scans under scans/<userID>/<reportID>.jpg.
type Archive struct {
	client  ObjectPutter
	presign *s3.PresignClient
	bucket  string
	logger  logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewArchive builds an archive from the S3 settings. It returns nil when
// no bucket is configured; a nil *Archive only issues report ids.
func NewArchive(ctx context.Context, cfg *config.Config, logger logging.Logger, m *metrics.Metrics) (*Archive, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	a := NewArchiveWithClient(client, cfg.S3Bucket, logger, m)
	a.presign = s3.NewPresignClient(client)
	return a, nil
}

// NewArchiveWithClient wraps an existing client, mainly for tests.
func NewArchiveWithClient(client ObjectPutter, bucket string, logger logging.Logger, m *metrics.Metrics) *Archive {
	return &Archive{
		client:  client,
		bucket:  bucket,
		logger:  logger.With("module", "media"),
		metrics: m,
		now:     time.Now,
	}
}

// NewReportID returns a report id for a scan taken at t.
func NewReportID(t time.Time) string {
	return fmt.Sprintf("REP-%d", t.UnixMilli())
}

// Key returns the object key of a report.
func Key(userID, reportID string) string {
	return fmt.Sprintf("scans/%s/%s.jpg", userID, reportID)
}

// Store uploads a base64 (optionally data URL) image and returns the
// report id it was filed under. On a nil archive it only issues the id.
func (a *Archive) Store(ctx context.Context, userID, imageBase64 string) (string, error) {
	if a == nil {
		return NewReportID(time.Now()), nil
	}

	reportID := NewReportID(a.now())

	raw, err := base64.StdEncoding.DecodeString(dataURLPrefix.ReplaceAllString(imageBase64, ""))
	if err != nil || len(raw) == 0 {
		a.count("invalid")
		return "", fmt.Errorf("%w: scan is not a base64 image", common.ErrorIncorrectArgument)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(Key(userID, reportID)),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("image/jpeg"),
		Metadata:    map[string]string{"user-id": userID},
	})
	if err != nil {
		a.count("error")
		return "", fmt.Errorf("upload scan: %w", err)
	}

	a.count("ok")
	a.logger.Info(ctx, "scan archived", "user", userID, "report", reportID)
	return reportID, nil
}

// PresignGet returns a temporary download link for a stored report.
func (a *Archive) PresignGet(ctx context.Context, userID, reportID string) (string, error) {
	if a == nil || a.presign == nil {
		return "", common.ErrorNotFound
	}
	req, err := presignGetObject(a.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(Key(userID, reportID)),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign scan: %w", err)
	}
	return req.URL, nil
}

func (a *Archive) count(outcome string) {
	if a.metrics != nil {
		a.metrics.ScansArchived.WithLabelValues(outcome).Inc()
	}
}
