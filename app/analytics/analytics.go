// Package analytics computes the chart data shown on the dashboard overview.
// Every function is pure over a state snapshot.
package analytics

import (
	"cmp"
	"slices"
	"strconv"
	"unicode/utf8"

	"bizdash/app/models"
	"bizdash/app/store"
)

// RecentPostCount is how many posts the overview lists.
const RecentPostCount = 5

// TopN bounds the per-post and per-email comment rankings.
const TopN = 10

// Bucket labels for length distributions.
const (
	BucketShort  = "Short (< 50 chars)"
	BucketMedium = "Medium (50-100 chars)"
	BucketLong   = "Long (100+ chars)"
)

// Count is one bar or slice of a chart.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary is the dashboard overview.
type Summary struct {
	TotalPosts    int           `json:"totalPosts"`
	TotalUsers    int           `json:"totalUsers"`
	TotalComments int           `json:"totalComments"`
	RecentPosts   []models.Post `json:"recentPosts"`
}

// Report bundles every chart for one snapshot.
type Report struct {
	Summary          Summary `json:"summary"`
	PostsByUser      []Count `json:"postsByUser"`
	PostTitleLengths []Count `json:"postTitleLengths"`
	CommentLengths   []Count `json:"commentLengths"`
	CommentsByPost   []Count `json:"commentsByPost"`
	CommentsByEmail  []Count `json:"commentsByEmail"`
	UsersByCompany   []Count `json:"usersByCompany"`
	UsersByCity      []Count `json:"usersByCity"`
	AccountsByRole   []Count `json:"accountsByRole,omitempty"`
}

// Build computes every chart for s.
func Build(s store.State) Report {
	return Report{
		Summary:          Summarize(s),
		PostsByUser:      PostsByUser(s.Posts, s.Users),
		PostTitleLengths: PostTitleLengths(s.Posts),
		CommentLengths:   CommentLengths(s.Comments),
		CommentsByPost:   CommentsByPost(s.Comments),
		CommentsByEmail:  CommentsByEmail(s.Comments),
		UsersByCompany:   UsersByCompany(s.Users),
		UsersByCity:      UsersByCity(s.Users),
	}
}

// Summarize counts the collections and lists the first posts in store order,
// which puts locally created posts first.
func Summarize(s store.State) Summary {
	recent := s.Posts[:min(len(s.Posts), RecentPostCount)]
	return Summary{
		TotalPosts:    len(s.Posts),
		TotalUsers:    len(s.Users),
		TotalComments: len(s.Comments),
		RecentPosts:   slices.Clone(recent),
	}
}

// PostsByUser counts posts per known user, labelled by the user's name.
// Users without posts are included with a zero count.
func PostsByUser(posts []models.Post, users []models.User) []Count {
	byUser := make(map[int64]int, len(users))
	for _, p := range posts {
		byUser[p.UserID]++
	}
	out := make([]Count, 0, len(users))
	for _, u := range users {
		out = append(out, Count{Label: u.Name, Count: byUser[u.ID]})
	}
	return ranked(out)
}

// PostTitleLengths buckets posts by title length.
func PostTitleLengths(posts []models.Post) []Count {
	return buckets(posts, func(p models.Post) string { return p.Title })
}

// CommentLengths buckets comments by body length.
func CommentLengths(comments []models.Comment) []Count {
	return buckets(comments, func(c models.Comment) string { return c.Body })
}

// CommentsByPost returns the TopN posts by comment count, labelled "Post N".
func CommentsByPost(comments []models.Comment) []Count {
	return top(tally(comments, func(c models.Comment) string {
		return "Post " + strconv.FormatInt(c.PostID, 10)
	}), TopN)
}

// CommentsByEmail returns the TopN commenter emails by comment count.
func CommentsByEmail(comments []models.Comment) []Count {
	return top(tally(comments, func(c models.Comment) string { return c.Email }), TopN)
}

func UsersByCompany(users []models.User) []Count {
	return tally(users, func(u models.User) string { return u.Company.Name })
}

func UsersByCity(users []models.User) []Count {
	return tally(users, func(u models.User) string { return u.Address.City })
}

// AccountsByRole counts local accounts per role. Accounts saved without a
// role count as viewers.
func AccountsByRole(accounts []models.Account) []Count {
	return tally(accounts, func(a models.Account) string {
		if a.Role == "" {
			return string(models.RoleViewer)
		}
		return string(a.Role)
	})
}

func buckets[T any](items []T, text func(T) string) []Count {
	out := []Count{{Label: BucketShort}, {Label: BucketMedium}, {Label: BucketLong}}
	for _, it := range items {
		switch n := utf8.RuneCountInString(text(it)); {
		case n < 50:
			out[0].Count++
		case n < 100:
			out[1].Count++
		default:
			out[2].Count++
		}
	}
	return out
}

func tally[T any](items []T, label func(T) string) []Count {
	counts := make(map[string]int)
	for _, it := range items {
		counts[label(it)]++
	}
	out := make([]Count, 0, len(counts))
	for l, n := range counts {
		out = append(out, Count{Label: l, Count: n})
	}
	return ranked(out)
}

// ranked orders by count descending, then label ascending.
func ranked(out []Count) []Count {
	slices.SortStableFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

func top(out []Count, n int) []Count {
	return out[:min(len(out), n)]
}
