// Package recent implements the bounded, deduplicating, newest-first list
// used for per-account view history.
package recent

import (
	"time"

	"github.com/catalog-accounts/internal/domain"
)

// Promote returns a new list with itemID at the front, any earlier entry for
// itemID removed, and the tail trimmed to max entries. views is not modified.
func Promote(views []domain.RecentView, itemID string, at time.Time, max int) []domain.RecentView {
	if max < 1 {
		max = domain.MaxRecentViews
	}
	out := make([]domain.RecentView, 0, min(len(views)+1, max))
	out = append(out, domain.RecentView{ItemID: itemID, ViewedAt: at})
	for _, v := range views {
		if len(out) == max {
			break
		}
		if v.ItemID == itemID {
			continue
		}
		out = append(out, v)
	}
	return out
}

// IDs returns the item ids of the first limit views, newest first.
func IDs(views []domain.RecentView, limit int) []string {
	if limit < 0 || limit > len(views) {
		limit = len(views)
	}
	ids := make([]string, limit)
	for i := 0; i < limit; i++ {
		ids[i] = views[i].ItemID
	}
	return ids
}
