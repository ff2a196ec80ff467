// Package cloudinary implements the storage.Client interface on top of
// the Cloudinary upload API.
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"
)

var ErrUploadFailed = errors.New("image upload failed")

// Client wraps the Cloudinary SDK.
type Client struct {
	cld *cloudinary.Cloudinary
}

// NewClient creates a Cloudinary-backed storage client.
func NewClient(cloudName, apiKey, apiSecret string) (*Client, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &Client{cld: cld}, nil
}

// Put uploads content under key and returns the delivery URL. The key is
// used as the Cloudinary public ID, so Delete can address the same blob.
func (c *Client) Put(ctx context.Context, key string, content io.Reader, _ string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		PublicID: key,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if resp.SecureURL == "" {
		return "", ErrUploadFailed
	}
	return resp.SecureURL, nil
}

// Delete removes the blob stored under key.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
