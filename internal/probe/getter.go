package probe

import (
	"context"
	"net/http"

	"github.com/nao1215/harvey/internal/fetch"
)

// Getter performs a classified GET. *fetch.Fetcher implements it.
type Getter interface {
	Get(ctx context.Context, rawURL string, header http.Header) fetch.Result
}
