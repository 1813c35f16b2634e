package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"studybot_backend/internal/config"
	"studybot_backend/internal/repository"
	"studybot_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// BackupService snapshots both store documents into an object-storage
// bucket. It is inert until a MinIO endpoint is configured.
type BackupService struct {
	Config      *config.BackupConfig
	CatalogRepo *repository.CatalogRepository
	ProfileRepo *repository.ProfileRepository
	Log         *zap.Logger

	client *minio.Client
}

func NewBackupService(cfg *config.BackupConfig, catalogRepo *repository.CatalogRepository, profileRepo *repository.ProfileRepository, log *zap.Logger) (*BackupService, error) {
	s := &BackupService{
		Config:      cfg,
		CatalogRepo: catalogRepo,
		ProfileRepo: profileRepo,
		Log:         log,
	}
	if cfg.Endpoint == "" {
		return s, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	s.client = client
	return s, nil
}

// Enabled reports whether a backup target is configured.
func (s *BackupService) Enabled() bool {
	return s.client != nil
}

// Run uploads timestamped snapshots of the catalog and profile documents
// and returns the object names written.
func (s *BackupService) Run(ctx context.Context) ([]string, error) {
	if !s.Enabled() {
		return nil, util.ErrBackupDisabled
	}

	stamp := time.Now().UTC().Format("20060102T150405Z")
	snapshots := []struct {
		name string
		data interface{}
	}{
		{fmt.Sprintf("materials-%s.json", stamp), map[string]interface{}{"items": s.CatalogRepo.Snapshot()}},
		{fmt.Sprintf("users-%s.json", stamp), s.ProfileRepo.Snapshot()},
	}

	written := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		raw, err := json.MarshalIndent(snap.data, "", "  ")
		if err != nil {
			return written, err
		}
		_, err = s.client.PutObject(ctx, s.Config.Bucket, snap.name,
			bytes.NewReader(raw), int64(len(raw)),
			minio.PutObjectOptions{ContentType: "application/json"})
		if err != nil {
			return written, err
		}
		written = append(written, snap.name)
	}

	s.Log.Info("backup uploaded", zap.Strings("objects", written), zap.String("bucket", s.Config.Bucket))
	return written, nil
}
