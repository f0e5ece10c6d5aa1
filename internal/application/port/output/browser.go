package output

import (
	"context"

	"agentql-tools/internal/domain/entity"
)

type BrowserPort interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error

	Snapshot(ctx context.Context) (*entity.PageSnapshot, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	CurrentURL() string
	Close()
}
