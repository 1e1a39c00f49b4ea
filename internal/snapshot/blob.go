package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/iblwz/statllm/internal/models"
)

// BlobStore keeps the snapshot as a JSON blob in Azure Blob Storage, for
// deployments where runs happen on ephemeral machines with no local disk to
// carry state between days.
type BlobStore struct {
	client    *azblob.Client
	container string
	blobName  string
}

// NewBlobStore connects to the storage account at serviceURL
// (https://<account>.blob.core.windows.net) using the given credential,
// typically azidentity.NewDefaultAzureCredential.
func NewBlobStore(serviceURL, container, blobName string, cred azcore.TokenCredential) (*BlobStore, error) {
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return &BlobStore{client: client, container: container, blobName: blobName}, nil
}

// Load downloads and decodes the snapshot blob. An absent blob is an empty
// snapshot; a corrupt one logs a warning and starts fresh.
func (s *BlobStore) Load(ctx context.Context) (models.Snapshot, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, s.blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			slog.Debug("no prior snapshot blob", "container", s.container, "blob", s.blobName)
			return models.Snapshot{}, nil
		}
		return models.Snapshot{}, fmt.Errorf("downloading snapshot blob: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("reading snapshot blob: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("snapshot blob is corrupt, starting fresh", "blob", s.blobName, "error", err)
		return models.Snapshot{}, nil
	}
	return snap, nil
}

// Save uploads the snapshot, overwriting the existing blob.
func (s *BlobStore) Save(ctx context.Context, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if _, err := s.client.CreateContainer(ctx, s.container, nil); err != nil {
		if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return fmt.Errorf("creating snapshot container: %w", err)
		}
	}

	if _, err := s.client.UploadStream(ctx, s.container, s.blobName, bytes.NewReader(data), nil); err != nil {
		return fmt.Errorf("uploading snapshot blob: %w", err)
	}
	slog.Debug("snapshot uploaded", "container", s.container, "blob", s.blobName, "bytes", len(data))
	return nil
}
