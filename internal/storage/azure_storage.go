package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"go-motion-inspector/pkg/models"
)

type azureArchive struct {
	client    *azblob.Client
	container string
}

// NewAzureArchive stores frames as blobs of a container
func NewAzureArchive(accountName, accountKey, container string) (Archive, error) {
	if container == "" {
		return nil, fmt.Errorf("azure container is required")
	}
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureArchive{client: client, container: container}, nil
}

func (s *azureArchive) Name() string {
	return "azure:" + s.container
}

func (s *azureArchive) Save(ctx context.Context, dir, name string, image []byte, info models.HistoricItem) (string, error) {
	imagePath, infoPath, err := objectPaths(dir, name)
	if err != nil {
		return "", err
	}

	contentType := "image/jpeg"
	_, err = s.client.UploadBuffer(ctx, s.container, imagePath, image, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("upload image failed: %w", err)
	}

	doc, err := encodeInfo(imagePath, info)
	if err != nil {
		return "", err
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, infoPath, doc, nil); err != nil {
		return "", fmt.Errorf("upload info failed: %w", err)
	}
	return imagePath, nil
}
