package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"eventra/clock"
	"eventra/helper"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Archiver keeps a copy of a finished snapshot file somewhere durable.
type Archiver interface {
	Archive(ctx context.Context, path string) (string, error)
}

type CloudinaryArchiver struct {
	cld    *cloudinary.Cloudinary
	folder string
	clock  clock.Clock
}

func NewCloudinaryArchiver(cld *cloudinary.Cloudinary, folder string, clk clock.Clock) *CloudinaryArchiver {
	return &CloudinaryArchiver{cld: cld, folder: folder, clock: clk}
}

// Archive uploads the file as a raw asset and returns its secure URL.
func (a *CloudinaryArchiver) Archive(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	res, err := a.cld.Upload.Upload(ctx, f, uploader.UploadParams{
		Folder:       a.folder,
		PublicID:     helper.DownloadName("", "tickets", a.clock.Now().UTC().Format("2006-01-02 150405")),
		ResourceType: "raw",
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot to cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload snapshot to cloudinary: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

var _ Archiver = (*CloudinaryArchiver)(nil)

// archiveTimeout bounds a single upload.
const archiveTimeout = 2 * time.Minute
