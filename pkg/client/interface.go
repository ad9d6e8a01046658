package client

import (
	"context"

	"github.com/menta2k/bg-remover/pkg/vectorizer"
)

// BackgroundRemover sends an image to a background-removal service.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, req vectorizer.Request) vectorizer.Result
}

var _ BackgroundRemover = (*vectorizer.Client)(nil)
