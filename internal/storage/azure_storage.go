package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobStorage resolves photos kept in Azure Blob Storage
type BlobStorage interface {
	GetImage(ctx context.Context, container, name string) (File, error)
}

type azureStorage struct {
	client *azblob.Client
}

func NewAzureStorage(accountName string, accountKey string) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &azureStorage{client: client}, nil
}

// GetImage reads the blob properties only. The content is downloaded when the
// returned file is opened.
func (s *azureStorage) GetImage(ctx context.Context, container, name string) (File, error) {
	props, err := s.client.ServiceClient().
		NewContainerClient(container).
		NewBlobClient(name).
		GetProperties(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("blob properties: %w", err)
	}

	f := &blobFile{client: s.client, container: container, name: name}
	if props.ContentType != nil {
		f.contentType = *props.ContentType
	}
	if props.ContentLength != nil {
		f.size = *props.ContentLength
	}
	return f, nil
}

type blobFile struct {
	client      *azblob.Client
	container   string
	name        string
	contentType string
	size        int64
}

func (f *blobFile) Name() string        { return f.name }
func (f *blobFile) ContentType() string { return f.contentType }
func (f *blobFile) Size() int64         { return f.size }

func (f *blobFile) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := f.client.DownloadStream(ctx, f.container, f.name, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	return resp.Body, nil
}
