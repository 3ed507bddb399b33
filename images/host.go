// Package images talks to the image hosting service that stores product pictures.
package images

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ProductsFolder is the folder product images are uploaded to
const ProductsFolder = "products"

// ErrInvalidImage is returned by Upload when the payload cannot be decoded
var ErrInvalidImage = errors.New("image must be a base64 data URI or base64 payload")

// Host uploads and deletes hosted images
type Host interface {
	// Upload stores the image payload (a data URI or raw base64) under folder and returns its secure URL
	Upload(ctx context.Context, image string, folder string) (string, error)
	// Delete removes the image identified by "<folder>/<publicID>"
	Delete(ctx context.Context, resourceID string) error
}

// PublicID derives the hosted image identifier from its URL: the last path
// segment with the extension removed.
// "https://host/x/products/abc123.png" -> "abc123"
func PublicID(imageURL string) string {
	segment := imageURL
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.Index(segment, "."); i >= 0 {
		segment = segment[:i]
	}
	return segment
}

// ResourceID joins a folder and public id into the identifier Delete expects
func ResourceID(folder, publicID string) string {
	return path.Join(folder, publicID)
}
