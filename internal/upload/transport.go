// internal/upload/transport.go
package upload

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/opencustoms/trade-portal/internal/config"
)

// S3Transport uploads attachments straight to a bucket instead of routing
// the bytes through the upstream multipart endpoint. The upstream still
// issues the attachment record; the object key doubles as the relative
// path.
type S3Transport struct {
	s3Client *s3.S3
	bucket   string
	records  RecordIssuer
}

// RecordIssuer registers an uploaded object with the upstream and returns
// the attachment record id for it.
type RecordIssuer interface {
	IssueAttachmentRecord(ctx context.Context, relativePath string) (int, error)
}

// RecordIssuerFunc adapts a function to the RecordIssuer interface.
type RecordIssuerFunc func(ctx context.Context, relativePath string) (int, error)

func (f RecordIssuerFunc) IssueAttachmentRecord(ctx context.Context, relativePath string) (int, error) {
	return f(ctx, relativePath)
}

func NewS3Transport(cfg config.AWSConfig, records RecordIssuer) (*S3Transport, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Transport{
		s3Client: s3.New(sess),
		bucket:   cfg.S3Bucket,
		records:  records,
	}, nil
}

// WithIssuer returns a copy of the transport bound to a different record
// issuer, so one S3 client can serve many sessions' credentials.
func (t *S3Transport) WithIssuer(records RecordIssuer) *S3Transport {
	bound := *t
	bound.records = records
	return &bound
}

func (t *S3Transport) Upload(ctx context.Context, name, contentType string, content []byte, report func(int)) (*Result, error) {
	key := objectKey(name)

	report(0)
	_, err := t.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}
	report(90)

	recordID, err := t.records.IssueAttachmentRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	report(100)

	return &Result{AttachmentRecordID: recordID, RelativePath: key}, nil
}

func objectKey(originalName string) string {
	id := uuid.New()
	ext := filepath.Ext(originalName)
	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("attachments/%s_%s%s", timestamp, id.String()[:8], ext)
}
