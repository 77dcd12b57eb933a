// Package snapshot archives the raw HTML of pages that failed structural
// validation, so selector drift can be diagnosed from the exact bytes the
// scraper saw.
package snapshot

import (
	"crypto/sha256"
	"fmt"
	"path"
	"time"
)

// objectPath builds a stable key for a snapshot: per-site, per-day, keyed by
// the URL hash so repeated failures of one posting overwrite rather than pile
// up.
func objectPath(site, rawURL string, now time.Time) string {
	urlHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawURL)))
	return path.Join(
		"snapshots",
		site,
		now.UTC().Format("2006-01-02"),
		fmt.Sprintf("%s.html", urlHash[:16]),
	)
}
