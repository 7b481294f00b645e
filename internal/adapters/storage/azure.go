package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/prof-ramos/asof-site/internal/ports"
)

// AzureConfig selects the storage account and container for uploads.
type AzureConfig struct {
	AccountURL       string
	ConnectionString string
	Container        string
	// PublicBaseURL overrides the blob endpoint in returned URLs, e.g. a CDN.
	PublicBaseURL string
}

// AzureStore keeps uploads in an Azure Blob Storage container.
type AzureStore struct {
	client    *azblob.Client
	container string
	baseURL   string
}

// NewAzureStore authenticates with a connection string when given, otherwise
// with the default Azure credential chain against AccountURL.
func NewAzureStore(cfg AzureConfig) (*AzureStore, error) {
	if cfg.Container == "" {
		return nil, errors.New("azure container is required")
	}

	var (
		client *azblob.Client
		err    error
	)
	switch {
	case cfg.ConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	case cfg.AccountURL != "":
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("azure credential: %w", credErr)
		}
		client, err = azblob.NewClient(cfg.AccountURL, cred, nil)
	default:
		return nil, errors.New("azure account url or connection string is required")
	}
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(client.URL(), "/") + "/" + url.PathEscape(cfg.Container)
	}
	return &AzureStore{client: client, container: cfg.Container, baseURL: strings.TrimRight(base, "/")}, nil
}

func (s *AzureStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (ports.BlobObject, error) {
	cleanKey, err := cleanBlobKey(key)
	if err != nil {
		return ports.BlobObject{}, err
	}
	_, err = s.client.UploadStream(ctx, s.container, cleanKey, body, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType:  to.Ptr(contentType),
			BlobCacheControl: to.Ptr("public, max-age=31536000, immutable"),
		},
	})
	if err != nil {
		return ports.BlobObject{}, fmt.Errorf("upload blob %s: %w", cleanKey, err)
	}
	return ports.BlobObject{
		Key:         cleanKey,
		URL:         publicBlobURL(s.baseURL, cleanKey),
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (s *AzureStore) Delete(ctx context.Context, key string) error {
	cleanKey, err := cleanBlobKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteBlob(ctx, s.container, cleanKey, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("delete blob %s: %w", cleanKey, err)
	}
	return nil
}

func publicBlobURL(base, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return base + "/" + strings.Join(parts, "/")
}
