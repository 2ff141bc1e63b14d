package services

import (
	"context"
	"errors"
	"log"
	"slices"
	"time"

	"bizdash/app/gateway"
	"bizdash/app/models"
	"bizdash/app/notify"
	"bizdash/app/scheduler"
	"bizdash/app/store"
	"bizdash/app/view"
)

// DefaultSearchDebounce is how long search input must settle before it is
// applied.
const DefaultSearchDebounce = 300 * time.Millisecond

const searchKey = "search"

// DashboardService runs the post workflows: remote call, store transitions
// and user-facing notifications.
type DashboardService struct {
	store    *store.Store
	gateway  gateway.Gateway
	notes    *notify.Queue
	sched    *scheduler.Scheduler
	debounce time.Duration
}

// NewDashboardService creates a DashboardService. A debounce of zero uses
// DefaultSearchDebounce.
func NewDashboardService(st *store.Store, gw gateway.Gateway, notes *notify.Queue, sched *scheduler.Scheduler, debounce time.Duration) *DashboardService {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	return &DashboardService{
		store:    st,
		gateway:  gw,
		notes:    notes,
		sched:    sched,
		debounce: debounce,
	}
}

// Load fetches every collection. Failures are already reported through the
// store and notifications; the joined error is returned for logging.
func (s *DashboardService) Load(ctx context.Context) error {
	return errors.Join(
		s.FetchPosts(ctx),
		s.FetchUsers(ctx),
		s.FetchComments(ctx),
	)
}

// FetchPosts replaces the post collection from the API.
func (s *DashboardService) FetchPosts(ctx context.Context) error {
	s.store.Dispatch(store.SetLoading{Loading: true})
	posts, err := s.gateway.FetchPosts(ctx)
	if err != nil {
		log.Printf("Error fetching posts: %v", err)
		s.store.Dispatch(store.SetError{Message: err.Error()})
		s.notes.Post("Failed to load posts", models.KindError)
		return err
	}
	s.store.Dispatch(store.SetPosts{Posts: posts})
	s.notes.Post("Posts loaded successfully!", models.KindSuccess)
	return nil
}

// FetchUsers replaces the user collection. A failure leaves the loading and
// error fields alone.
func (s *DashboardService) FetchUsers(ctx context.Context) error {
	users, err := s.gateway.FetchUsers(ctx)
	if err != nil {
		log.Printf("Error fetching users: %v", err)
		s.notes.Post("Failed to load users", models.KindError)
		return err
	}
	s.store.Dispatch(store.SetUsers{Users: users})
	return nil
}

func (s *DashboardService) FetchComments(ctx context.Context) error {
	comments, err := s.gateway.FetchComments(ctx)
	if err != nil {
		log.Printf("Error fetching comments: %v", err)
		s.notes.Post("Failed to load comments", models.KindError)
		return err
	}
	s.store.Dispatch(store.SetComments{Comments: comments})
	return nil
}

// CreatePost validates input and prepends the created post. The post is
// owned by the logged-in account, if any.
func (s *DashboardService) CreatePost(ctx context.Context, input models.PostInput) (models.Post, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return models.Post{}, err
	}

	var acting int64
	if u := s.store.State().User; u != nil {
		acting = u.ID
	}

	s.store.Dispatch(store.SetLoading{Loading: true})
	post, err := s.gateway.CreatePost(ctx, input, acting)
	if err != nil {
		return models.Post{}, s.fail(err, "Failed to create post")
	}
	s.store.Dispatch(store.CreatePost{Post: post})
	s.store.Dispatch(store.SetLoading{Loading: false})
	s.notes.Post("Post created successfully!", models.KindSuccess)
	return post, nil
}

// UpdatePost validates input and replaces the post with id. An input without
// a user id keeps the current owner.
func (s *DashboardService) UpdatePost(ctx context.Context, id int64, input models.PostInput) (models.Post, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return models.Post{}, err
	}
	if input.UserID == 0 {
		posts := s.store.State().Posts
		if i := slices.IndexFunc(posts, func(p models.Post) bool { return p.ID == id }); i >= 0 {
			input.UserID = posts[i].UserID
		}
	}

	s.store.Dispatch(store.SetLoading{Loading: true})
	post, err := s.gateway.UpdatePost(ctx, id, input)
	if err != nil {
		return models.Post{}, s.fail(err, "Failed to update post")
	}
	s.store.Dispatch(store.UpdatePost{Post: post})
	s.store.Dispatch(store.SetLoading{Loading: false})
	s.notes.Post("Post updated successfully!", models.KindSuccess)
	return post, nil
}

// DeletePost removes the post with id. Unknown ids are not an error.
func (s *DashboardService) DeletePost(ctx context.Context, id int64) error {
	s.store.Dispatch(store.SetLoading{Loading: true})
	if err := s.gateway.DeletePost(ctx, id); err != nil {
		return s.fail(err, "Failed to delete post")
	}
	s.store.Dispatch(store.DeletePost{ID: id})
	s.store.Dispatch(store.SetLoading{Loading: false})
	s.notes.Post("Post deleted successfully!", models.KindSuccess)
	return nil
}

func (s *DashboardService) fail(err error, message string) error {
	log.Printf("%s: %v", message, err)
	s.store.Dispatch(store.SetError{Message: err.Error()})
	s.notes.Post(message, models.KindError)
	return err
}

// SearchInput records a keystroke. Only the last term entered within the
// debounce window is committed.
func (s *DashboardService) SearchInput(term string) {
	s.sched.Schedule(searchKey, s.debounce, func() {
		s.store.Dispatch(store.SetSearchTerm{Term: term})
	})
}

// CommitSearch applies term now and drops any pending debounced input.
func (s *DashboardService) CommitSearch(term string) {
	s.sched.Cancel(searchKey)
	s.store.Dispatch(store.SetSearchTerm{Term: term})
}

// SetSort changes the sort field and direction together.
func (s *DashboardService) SetSort(field string, order store.SortOrder) {
	s.store.Dispatch(store.SetSort{SortBy: field, Order: order})
}

func (s *DashboardService) GoToPage(page int) {
	s.store.Dispatch(store.SetCurrentPage{Page: page})
}

// Page derives the visible page from the current state.
func (s *DashboardService) Page() view.Page {
	return view.Derive(s.store.State())
}

func (s *DashboardService) State() store.State {
	return s.store.State()
}

func (s *DashboardService) Notifications() []models.Notification {
	return s.notes.List()
}

// DismissNotification removes a notification before it expires.
func (s *DashboardService) DismissNotification(id int64) bool {
	return s.notes.Remove(id)
}
