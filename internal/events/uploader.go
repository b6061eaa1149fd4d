package events

import (
	"context"

	"github.com/votelane/reco-service/internal/recplatform"
)

// PlatformUploader adapts the platform client to the tracker's upload port.
type PlatformUploader struct {
	client *recplatform.Client
	table  string
}

func NewPlatformUploader(client *recplatform.Client, table string) *PlatformUploader {
	return &PlatformUploader{client: client, table: table}
}

func (u *PlatformUploader) UploadInteractions(ctx context.Context, batch []Interaction) error {
	_, err := u.client.InsertRows(ctx, u.table, batch)
	return err
}
