package ports

import "context"

// PreviewRef is a live handle to a selected file's bytes, addressable by URL.
type PreviewRef struct {
	ID  string
	URL string
}

// PreviewContent is the payload behind a preview handle.
type PreviewContent struct {
	Name        string
	ContentType string
	Data        []byte
}

// PreviewStore hands out preview handles. Every Acquire must be matched by a
// Release, either directly or through ReleaseOwner.
type PreviewStore interface {
	Acquire(ctx context.Context, owner string, content PreviewContent) (PreviewRef, error)
	// Release frees one handle and reports whether it was live.
	Release(id string) bool
	// ReleaseOwner frees every handle held by owner and returns how many were freed.
	ReleaseOwner(owner string) int
	// Open returns the content of a live handle held by owner.
	Open(owner, id string) (PreviewContent, bool)
	Live() int
}
