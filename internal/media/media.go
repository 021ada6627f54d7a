// Package media holds the frame plumbing between ingest sources and the
// compositor: per-source frame buffers, the source registry, and the fan-out
// used for live broadcast.
package media

import (
	"github.com/lanikai/mosaic/internal/logging"
)

var log = logging.DefaultLogger.WithTag("media")
