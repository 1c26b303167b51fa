package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	model "github.com/Itish41/COIDashboard/models"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"
)

const CSVContentType = "text/csv; charset=utf-8"

var csvHeader = []string{
	"Property",
	"Tenant Name",
	"Tenant Email",
	"Unit",
	"COI Name",
	"Expiry Date",
	"Status",
	"Reminder Status",
	"Created At",
}

// ExportCSV writes records as CSV. Text columns are always quoted, dates are not,
// and rows are separated by \n without a trailing newline.
func ExportCSV(w io.Writer, records []model.COI) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(csvHeader, ",")); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, c := range records {
		row := []string{
			quoteCSV(c.Property),
			quoteCSV(c.TenantName),
			quoteCSV(c.TenantEmail),
			quoteCSV(c.Unit),
			quoteCSV(c.COIName),
			c.ExpiryDate,
			quoteCSV(string(c.Status)),
			quoteCSV(string(c.ReminderStatus)),
			c.CreatedAt,
		}
		if _, err := bw.WriteString("\n" + strings.Join(row, ",")); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", c.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportFileName is coi-data-<YYYY-MM-DD>.csv for the UTC date of now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("coi-data-%s.csv", now.UTC().Format(dateLayout))
}

// Archiver keeps a copy of an export and returns where it was stored.
type Archiver interface {
	Archive(ctx context.Context, name string, data []byte) (string, error)
}

// ArchiveExport exports the full store and hands the file to archiver.
func ArchiveExport(ctx context.Context, store *COIStore, archiver Archiver, now time.Time) (string, error) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, store.Snapshot()); err != nil {
		return "", err
	}
	location, err := archiver.Archive(ctx, ExportFileName(now), buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}
	return location, nil
}

// DirArchiver writes exports into a local directory.
type DirArchiver struct {
	dir string
}

func NewDirArchiver(dir string) *DirArchiver {
	return &DirArchiver{dir: dir}
}

func (a *DirArchiver) Archive(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive dir: %w", err)
	}
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// S3Archiver uploads exports under the exports/ prefix of a bucket.
type S3Archiver struct {
	s3Client s3iface.S3API
	bucket   string
	log      *logrus.Entry
}

func NewS3Archiver(cfg S3Config, log *logrus.Entry) (*S3Archiver, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("missing required S3 configuration")
	}
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Archiver{s3Client: s3.New(sess), bucket: cfg.Bucket, log: log}, nil
}

func (a *S3Archiver) Archive(ctx context.Context, name string, data []byte) (string, error) {
	key := "exports/" + name
	_, err := a.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(CSVContentType),
	})
	if err != nil {
		a.log.Errorf("[Archive] S3 upload error: %v", err)
		return "", fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	location := fmt.Sprintf("s3://%s/%s", a.bucket, key)
	a.log.Infof("[Archive] export uploaded to %s", location)
	return location, nil
}
