package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/securelogin/internal/logging"
	sc "github.com/dmitrijs2005/securelogin/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// ReportExporter archives security reports as JSON objects in an
// S3-compatible bucket.
type ReportExporter struct {
	attempts *AttemptService
	config   *sc.Config
	log      logging.Logger
	now      func() time.Time
}

func NewReportExporter(attempts *AttemptService, log logging.Logger, config *sc.Config) *ReportExporter {
	return &ReportExporter{
		attempts: attempts,
		config:   config,
		log:      log.With("module", "export"),
		now:      time.Now,
	}
}

// ReportKey names the object for a report generated at t.
func ReportKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("reports/%d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (e *ReportExporter) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(e.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			e.config.S3RootUser,
			e.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(e.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export generates the current security report and uploads it. It returns
// the object key.
func (e *ReportExporter) Export(ctx context.Context) (string, error) {
	report, err := e.attempts.GenerateSecurityReport(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	client, err := e.getS3Client(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := e.config.S3Bucket
	key := ReportKey(e.now())

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}

	e.log.Info(ctx, "security report exported", "bucket", bucket, "key", key)
	return key, nil
}
