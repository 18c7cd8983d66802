package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/minibi/internal/analysis"
	"github.com/dmitrijs2005/minibi/internal/common"
	sc "github.com/dmitrijs2005/minibi/internal/server/config"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportResult is either an object in the export bucket reachable through
// URL until ExpiresAt, or, with no bucket configured, the CSV itself.
type ExportResult struct {
	FileName  string    `json:"filename"`
	Rows      int       `json:"rows"`
	Key       string    `json:"key,omitempty"`
	URL       string    `json:"url,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Payload   []byte    `json:"-"`
}

// ExportService writes the filtered rows of a readable file as CSV.
type ExportService struct {
	gateway *AccessGateway
	config  *sc.Config
	now     func() time.Time
}

func NewExportService(gateway *AccessGateway, config *sc.Config) *ExportService {
	return &ExportService{gateway: gateway, config: config, now: time.Now}
}

func (s *ExportService) storageKey() string {
	d := s.now().UTC()
	return fmt.Sprintf("exports/%04d/%02d/%02d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), common.CSVExtension)
}

func exportName(name string) string {
	stem := name
	if i := strings.LastIndex(name, "."); i > 0 {
		stem = name[:i]
	}
	return stem + "_filtered" + common.CSVExtension
}

func (s *ExportService) s3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export filters the file with q.Filters. Grouping and limits in q are
// ignored: an export is always row-level.
func (s *ExportService) Export(ctx context.Context, fileID, accountID int64, q analysis.Query) (*ExportResult, error) {
	name, table, err := s.gateway.ReadTable(ctx, fileID, accountID)
	if err != nil {
		return nil, err
	}

	filtered, err := analysis.Apply(table, q.Filters...)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := analysis.WriteCSV(&buf, filtered); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	res := &ExportResult{FileName: exportName(name), Rows: len(filtered.Rows)}
	if s.config.S3Bucket == "" {
		res.Payload = buf.Bytes()
		return res, nil
	}

	if err := s.upload(ctx, res, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("export upload: %w: %w", common.ErrStorage, err)
	}
	return res, nil
}

func (s *ExportService) upload(ctx context.Context, res *ExportResult, payload []byte) error {
	client, err := s.s3Client(ctx)
	if err != nil {
		return err
	}

	bucket := s.config.S3Bucket
	key := s.storageKey()
	disposition := fmt.Sprintf("attachment; filename=%q", res.FileName)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:             &bucket,
		Key:                &key,
		Body:               bytes.NewReader(payload),
		ContentType:        aws.String("text/csv"),
		ContentDisposition: &disposition,
	})
	if err != nil {
		return err
	}

	validity := s.config.ExportURLValidity
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return err
	}

	res.Key = key
	res.URL = req.URL
	res.ExpiresAt = s.now().Add(validity)
	return nil
}
