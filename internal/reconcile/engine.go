// Package reconcile joins the persisted cart/wishlist references against the
// fetched catalog and produces the filtered, sorted, render-ready sequence.
// Every call recomputes the full output from its inputs; nothing here holds
// state between passes.
package reconcile

import (
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/crazycars/storefront/internal/models"
)

// Status tells the consumer WHY a result looks the way it does, so the UI can
// render "the shop is unreachable" differently from "your filters matched
// nothing".
type Status string

const (
	StatusOK Status = "ok"
	// StatusCatalogUnavailable: fetch failed and no prior snapshot exists.
	StatusCatalogUnavailable Status = "catalog_unavailable"
	// StatusCatalogEmpty: the catalog fetched fine and genuinely has no products.
	StatusCatalogEmpty Status = "catalog_empty"
	// StatusNoMatches: there were items, but the active filters excluded all of them.
	StatusNoMatches Status = "no_matches"
)

// Supported sort keys. Exactly one applies at a time; anything unrecognized
// falls back to featured (no reorder).
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortName      = "name"
)

// Query carries the user-driven narrowing parameters. All active filters are
// AND-combined; there is no OR or complex query support.
type Query struct {
	Search   string
	Category string
	Company  string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
}

// Input is the (catalog snapshot, reference collection) pair a run consumes.
// CatalogOK is false only when the fetch errored AND no cached snapshot
// exists - the one case where reconciliation cannot happen at all.
type Input struct {
	References []models.Reference
	Catalog    []models.Product
	CatalogOK  bool
}

// Result is the materialization-ready output plus the aggregates the
// presentation layer renders.
type Result struct {
	Items               []models.ReconciledItem `json:"items"`
	MatchedCount        int                     `json:"matchedCount"`
	TotalReferenceCount int                     `json:"totalReferenceCount"`
	Status              Status                  `json:"status"`
}

// Reconcile joins every reference against the catalog by exact id equality.
// Every reference produces exactly one item - resolved when the id still
// exists upstream, flagged unavailable when it does not. References are NEVER
// silently dropped, and the user's own insertion order is preserved (the
// catalog's order is irrelevant here).
func Reconcile(refs []models.Reference, catalog []models.Product) []models.ReconciledItem {
	byID := make(map[models.ProductID]*models.Product, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	items := make([]models.ReconciledItem, 0, len(refs))
	for _, ref := range refs {
		resolved := byID[ref.ID]
		items = append(items, models.ReconciledItem{
			Reference:     ref,
			Resolved:      resolved,
			IsUnavailable: resolved == nil,
		})
	}
	return items
}

// FromCatalog wraps raw catalog records as trivially-resolved items so the
// shop and category pages can reuse the same filter/sort pass as the cart and
// wishlist views.
func FromCatalog(catalog []models.Product) []models.ReconciledItem {
	items := make([]models.ReconciledItem, 0, len(catalog))
	for i := range catalog {
		p := &catalog[i]
		items = append(items, models.ReconciledItem{
			Reference: models.Reference{ID: p.ID},
			Resolved:  p,
		})
	}
	return items
}

// Run performs a full pipeline pass: join, filter, sort, aggregate.
func Run(in Input, q Query) Result {
	if !in.CatalogOK {
		return Result{
			Items:               []models.ReconciledItem{},
			TotalReferenceCount: len(in.References),
			Status:              StatusCatalogUnavailable,
		}
	}

	joined := Reconcile(in.References, in.Catalog)
	filtered := Filter(joined, q)
	Sort(filtered, q.Sort)

	res := Result{
		Items:               filtered,
		MatchedCount:        len(filtered),
		TotalReferenceCount: len(joined),
		Status:              StatusOK,
	}
	switch {
	case len(in.Catalog) == 0:
		res.Status = StatusCatalogEmpty
	case len(filtered) == 0 && len(joined) > 0:
		res.Status = StatusNoMatches
	}
	return res
}

// Browse runs the filter/sort pass over the raw catalog (shop page view).
func Browse(catalog []models.Product, catalogOK bool, q Query) Result {
	if !catalogOK {
		return Result{Items: []models.ReconciledItem{}, Status: StatusCatalogUnavailable}
	}

	items := Filter(FromCatalog(catalog), q)
	Sort(items, q.Sort)

	res := Result{
		Items:        items,
		MatchedCount: len(items),
		Status:       StatusOK,
	}
	switch {
	case len(catalog) == 0:
		res.Status = StatusCatalogEmpty
	case len(items) == 0:
		res.Status = StatusNoMatches
	}
	return res
}

// Filter applies the active predicates in a fixed order:
// text search, then category, then company, then price range. All are
// AND-combined, so dropping any one of them can only grow the result.
func Filter(items []models.ReconciledItem, q Query) []models.ReconciledItem {
	out := make([]models.ReconciledItem, 0, len(items))
	for _, it := range items {
		if q.Search != "" && !matchesSearch(&it, q.Search) {
			continue
		}
		if q.Category != "" && !matchesCategory(&it, q.Category) {
			continue
		}
		if q.Company != "" && !matchesCompany(&it, q.Company) {
			continue
		}
		if !matchesPrice(&it, q.MinPrice, q.MaxPrice) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// matchesSearch is a case-insensitive substring match over name, description,
// category name and company name.
func matchesSearch(it *models.ReconciledItem, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(it.DisplayName()), term) {
		return true
	}
	if it.Resolved != nil {
		p := it.Resolved
		if strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term) ||
			strings.Contains(strings.ToLower(p.Company), term) {
			return true
		}
	}
	return false
}

// matchesCategory compares slug-canonical forms so "Sports Cars" and
// "sports-cars" are the same category. Unresolved items carry no category and
// never match a category filter.
func matchesCategory(it *models.ReconciledItem, category string) bool {
	return it.Resolved != nil && slug.Make(it.Resolved.Category) == slug.Make(category)
}

func matchesCompany(it *models.ReconciledItem, company string) bool {
	return it.Resolved != nil && slug.Make(it.Resolved.Company) == slug.Make(company)
}

// matchesPrice is an inclusive range check on the effective price.
func matchesPrice(it *models.ReconciledItem, min, max *float64) bool {
	price := it.EffectivePrice()
	if min != nil && price < *min {
		return false
	}
	if max != nil && price > *max {
		return false
	}
	return true
}

// Sort reorders in place by exactly one key. All sorts are stable, and
// "featured" (or anything unknown) keeps the incoming order untouched.
func Sort(items []models.ReconciledItem, key string) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SortPrice() < items[j].SortPrice()
		})
	case SortPriceHigh:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SortPrice() > items[j].SortPrice()
		})
	case SortRating:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Rating() > items[j].Rating()
		})
	case SortName:
		coll := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(items, func(i, j int) bool {
			return coll.CompareString(items[i].DisplayName(), items[j].DisplayName()) < 0
		})
	}
}
