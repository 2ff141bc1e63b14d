package store

import "bizdash/app/models"

// Reduce applies a to s and returns the next state. It is total: unknown
// actions return s unchanged.
func Reduce(s State, a Action) State {
	next, _ := reduce(s, a)
	return next
}

// reduce also reports whether a was a recognised action.
func reduce(s State, a Action) (State, bool) {
	switch a := a.(type) {
	case Login:
		acc := a.Account
		s.IsAuthenticated = true
		s.User = &acc
	case Logout:
		s.IsAuthenticated = false
		s.User = nil

	case SetLoading:
		s.Loading = a.Loading
	case SetError:
		s.Error = a.Message
		s.Loading = false
	case SetPosts:
		s.Posts = clone(a.Posts)
		s.Loading = false
		s.Error = ""
	case SetUsers:
		s.Users = clone(a.Users)
	case SetComments:
		s.Comments = clone(a.Comments)

	case SetCurrentPage:
		s.CurrentPage = max(a.Page, 1)
	case SetSearchTerm:
		s.SearchTerm = a.Term
		s.CurrentPage = 1
	case SetSort:
		s.SortBy = a.SortBy
		s.SortOrder = a.Order
		if s.SortOrder != Desc {
			s.SortOrder = Asc
		}

	case OpenCreateModal:
		s.IsCreateModalOpen = true
		s.SelectedItem = nil
	case CloseCreateModal:
		s.IsCreateModalOpen = false
		s.SelectedItem = nil
	case OpenEditModal:
		p := a.Post
		s.IsEditModalOpen = true
		s.SelectedItem = &p
	case CloseEditModal:
		s.IsEditModalOpen = false
		s.SelectedItem = nil
	case OpenDeleteModal:
		p := a.Post
		s.IsDeleteModalOpen = true
		s.SelectedItem = &p
	case CloseDeleteModal:
		s.IsDeleteModalOpen = false
		s.SelectedItem = nil
	case SetSelectedItem:
		if a.Post == nil {
			s.SelectedItem = nil
		} else {
			p := *a.Post
			s.SelectedItem = &p
		}

	case AddNotification:
		s.Notifications = append(clone(s.Notifications), a.Notification)
	case RemoveNotification:
		s.Notifications = filter(s.Notifications, func(n models.Notification) bool { return n.ID != a.ID })

	case CreatePost:
		posts := make([]models.Post, 0, len(s.Posts)+1)
		posts = append(posts, a.Post)
		s.Posts = append(posts, s.Posts...)
	case UpdatePost:
		posts := make([]models.Post, len(s.Posts))
		for i, p := range s.Posts {
			if p.ID == a.Post.ID {
				p = a.Post
			}
			posts[i] = p
		}
		s.Posts = posts
	case DeletePost:
		s.Posts = filter(s.Posts, func(p models.Post) bool { return p.ID != a.ID })

	default:
		return s, false
	}
	return s, true
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
