// Package view derives the visible post list from an entity store snapshot.
// Nothing here is cached: every call recomputes from the snapshot it is given.
package view

import (
	"cmp"
	"slices"
	"strings"

	"bizdash/app/models"
	"bizdash/app/store"
)

// Page is the derived post list for one render.
type Page struct {
	Items        []models.Post   `json:"items"`
	TotalItems   int             `json:"totalItems"`
	TotalPages   int             `json:"totalPages"`
	CurrentPage  int             `json:"currentPage"`
	ItemsPerPage int             `json:"itemsPerPage"`
	SearchTerm   string          `json:"searchTerm"`
	SortBy       string          `json:"sortBy"`
	SortOrder    store.SortOrder `json:"sortOrder"`
}

// Derive runs filter, sort and paginate over s.
func Derive(s store.State) Page {
	filtered := Filter(s.Posts, s.SearchTerm)
	sorted := Sort(filtered, s.SortBy, s.SortOrder)
	return Page{
		Items:        Paginate(sorted, s.CurrentPage, s.ItemsPerPage),
		TotalItems:   len(filtered),
		TotalPages:   TotalPages(len(filtered), s.ItemsPerPage),
		CurrentPage:  s.CurrentPage,
		ItemsPerPage: s.ItemsPerPage,
		SearchTerm:   s.SearchTerm,
		SortBy:       s.SortBy,
		SortOrder:    s.SortOrder,
	}
}

// Filter keeps posts whose title or body contains term, ignoring case.
func Filter(posts []models.Post, term string) []models.Post {
	needle := strings.ToLower(term)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Body), needle) {
			out = append(out, p)
		}
	}
	return out
}

// comparators define the order for each sortable field. Numeric fields
// compare numerically, text fields compare bytewise.
var comparators = map[string]func(a, b models.Post) int{
	"id":     func(a, b models.Post) int { return cmp.Compare(a.ID, b.ID) },
	"userId": func(a, b models.Post) int { return cmp.Compare(a.UserID, b.UserID) },
	"title":  func(a, b models.Post) int { return strings.Compare(a.Title, b.Title) },
	"body":   func(a, b models.Post) int { return strings.Compare(a.Body, b.Body) },
}

// SortFields lists the fields Sort understands.
func SortFields() []string {
	return []string{"id", "title", "body", "userId"}
}

// Sort returns a stably sorted copy of posts. An unknown field keeps the
// input order.
func Sort(posts []models.Post, field string, order store.SortOrder) []models.Post {
	out := slices.Clone(posts)
	compare, ok := comparators[field]
	if !ok {
		return out
	}
	if order == store.Desc {
		slices.SortStableFunc(out, func(a, b models.Post) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

// Paginate returns the window [(page-1)*perPage, page*perPage) of posts.
// Windows outside the slice are empty.
func Paginate(posts []models.Post, page, perPage int) []models.Post {
	if page < 1 || perPage < 1 {
		return []models.Post{}
	}
	start := (page - 1) * perPage
	if start >= len(posts) {
		return []models.Post{}
	}
	end := min(start+perPage, len(posts))
	return slices.Clone(posts[start:end])
}

// TotalPages is ceil(count/perPage), or 0 when there is nothing to show.
func TotalPages(count, perPage int) int {
	if count <= 0 || perPage < 1 {
		return 0
	}
	return (count + perPage - 1) / perPage
}
