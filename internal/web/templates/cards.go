// Package templates renders the HTML pages of the web UI. The views are
// templ components; run `templ generate` after editing a .templ file.
package templates

import (
	"fmt"
	"net/url"
	"time"

	"github.com/a-h/templ"
)

// DatasetCard is the dashboard view of one dataset.
type DatasetCard struct {
	Key         string
	Label       string
	Description string
	RowCount    int64
	LastImport  *time.Time
	LastFile    string
}

// Summary is the record count and last-import line shown on the card.
func (c DatasetCard) Summary() string {
	if c.LastImport == nil {
		return fmt.Sprintf("%d records, never imported", c.RowCount)
	}
	return fmt.Sprintf("%d records, last import %s from %s",
		c.RowCount, c.LastImport.Format("2006-01-02 15:04"), c.LastFile)
}

// url builds an API link for the dataset with its key as one path segment.
func (c DatasetCard) url(prefix string, suffix ...string) templ.SafeURL {
	u := prefix + url.PathEscape(c.Key)
	for _, s := range suffix {
		u += s
	}
	return templ.URL(u)
}
