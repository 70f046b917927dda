// Package backup produces encrypted JSON exports of a member's data and
// ships them to S3-compatible storage.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"famgrocer/internal/model"
	"famgrocer/internal/store"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Manager builds per-member exports and manages their encrypted copies
// in object storage. When S3 credentials are absent the plain-JSON
// export still works; only the upload paths are disabled.
type Manager struct {
	mu      sync.RWMutex
	cfg     S3Config
	client  s3Client
	users   *store.UserStore
	items   *store.ItemStore
	backups *store.BackupStore
	logger  *slog.Logger
	now     func() time.Time
}

func NewManager(cfg S3Config, users *store.UserStore, items *store.ItemStore, backups *store.BackupStore, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:     cfg,
		users:   users,
		items:   items,
		backups: backups,
		logger:  logger.With("component", "backup"),
		now:     time.Now,
	}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		m.client = newS3Client(cfg)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether uploads to object storage are configured.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Export assembles the member's flat backup document: their own items
// plus their preferences. Members without a family export an empty item
// list under an empty family code.
func (m *Manager) Export(userUID string) (*model.Export, error) {
	user, err := m.users.GetByUID(userUID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	export := &model.Export{
		ExportedAt:  m.now().UTC(),
		Items:       []model.Item{},
		Preferences: user.Preferences,
	}
	if user.FamilyCode != nil {
		export.FamilyCode = *user.FamilyCode
		items, err := m.items.ListByAddedBy(*user.FamilyCode, userUID)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		export.Items = items
	}
	return export, nil
}

// RunNow builds, encrypts and uploads one export immediately. The
// passphrase never leaves memory; only the salted ciphertext is stored.
func (m *Manager) RunNow(ctx context.Context, userUID, passphrase string) (*model.Backup, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, fmt.Errorf("backup not configured: S3 credentials missing")
	}

	export, err := m.Export(userUID)
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(export)
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	sealed, err := Encrypt(plaintext, passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("encrypt export: %w", err)
	}

	timestamp := m.now().UTC().Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("export-%s.json.enc", timestamp)

	record, err := m.backups.Create(userUID, filename)
	if err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	s3Key := fmt.Sprintf("%s/%s", userUID, filename)
	if err := m.backups.MarkUploading(record.ID); err != nil {
		m.logger.Warn("mark uploading", "error", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(s3Key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return nil, fmt.Errorf("upload to s3: %w", err)
	}

	if err := m.backups.MarkCompleted(record.ID, s3Key, int64(len(sealed))); err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}

	m.logger.Info("export uploaded", "user", userUID, "bytes", len(sealed))
	return m.backups.GetByID(record.ID)
}

// Download streams one encrypted export back from object storage. The
// record must belong to the requesting member.
func (m *Manager) Download(ctx context.Context, backupID int64, userUID string) (io.ReadCloser, int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, 0, fmt.Errorf("backup not configured")
	}

	record, err := m.backups.GetByID(backupID)
	if err != nil {
		return nil, 0, fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.UserUID != userUID {
		return nil, 0, fmt.Errorf("backup not found")
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download from s3: %w", err)
	}

	return result.Body, record.SizeBytes, nil
}

// Delete removes one export from both the record table and the bucket.
func (m *Manager) Delete(ctx context.Context, backupID int64, userUID string) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.Bucket
	m.mu.RUnlock()

	record, err := m.backups.GetByID(backupID)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.UserUID != userUID {
		return fmt.Errorf("backup not found")
	}

	if client != nil && record.S3Key != "" {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(record.S3Key),
		}); err != nil {
			m.logger.Warn("delete s3 object", "key", record.S3Key, "error", err)
		}
	}
	return m.backups.Delete(record.ID)
}

// List returns the member's most recent export records.
func (m *Manager) List(userUID string, limit int) ([]model.Backup, error) {
	return m.backups.ListByUser(userUID, limit)
}
