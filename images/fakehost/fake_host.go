package imagefakehost

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-catalog-server/images"
)

var _ images.Host = (*FakeHost)(nil)

// FakeHost records calls and hands out predictable URLs
type FakeHost struct {
	BaseURL   string
	UploadErr error
	DeleteErr error

	uploads []string
	deletes []string
	lock    sync.Mutex
}

func NewFakeHost() *FakeHost {
	return &FakeHost{BaseURL: "https://images.test"}
}

func (h *FakeHost) Upload(_ context.Context, image string, folder string) (string, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.UploadErr != nil {
		return "", h.UploadErr
	}
	h.uploads = append(h.uploads, image)
	return fmt.Sprintf("%s/%s/img%d.png", h.BaseURL, folder, len(h.uploads)), nil
}

func (h *FakeHost) Delete(_ context.Context, resourceID string) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.deletes = append(h.deletes, resourceID)
	return h.DeleteErr
}

func (h *FakeHost) Uploads() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]string(nil), h.uploads...)
}

func (h *FakeHost) Deletes() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]string(nil), h.deletes...)
}
