package controllers

import (
	"net/http"

	"bizdash/app/models"
	"bizdash/app/services"
	"bizdash/app/store"
)

// PostController handles HTTP requests for posts and the post list view
type PostController struct {
	dashboard *services.DashboardService
}

// NewPostController creates a new PostController
func NewPostController(dashboard *services.DashboardService) *PostController {
	return &PostController{dashboard: dashboard}
}

// Index returns the current page of the filtered, sorted post list
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, pc.dashboard.Page())
}

// Refresh reloads posts from the API
func (pc *PostController) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := pc.dashboard.FetchPosts(r.Context()); err != nil {
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, pc.dashboard.Page())
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var input models.PostInput
	if !decodeJSON(w, r, &input) {
		return
	}

	post, err := pc.dashboard.CreatePost(r.Context(), input)
	if err != nil {
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Update handles editing an existing post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "post")
	if !ok {
		return
	}
	var input models.PostInput
	if !decodeJSON(w, r, &input) {
		return
	}

	post, err := pc.dashboard.UpdatePost(r.Context(), id, input)
	if err != nil {
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "post")
	if !ok {
		return
	}
	if err := pc.dashboard.DeletePost(r.Context(), id); err != nil {
		sendFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type viewRequest struct {
	SearchTerm *string          `json:"searchTerm"`
	Debounce   bool             `json:"debounce"`
	SortBy     *string          `json:"sortBy"`
	SortOrder  *store.SortOrder `json:"sortOrder"`
	Page       *int             `json:"page"`
}

// SetView changes search, sort and page, in that order, and returns the
// resulting page. With debounce set the search term is applied only after
// input settles, as typing in the search box does.
func (pc *PostController) SetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.SearchTerm != nil {
		if req.Debounce {
			pc.dashboard.SearchInput(*req.SearchTerm)
		} else {
			pc.dashboard.CommitSearch(*req.SearchTerm)
		}
	}
	if req.SortBy != nil || req.SortOrder != nil {
		st := pc.dashboard.State()
		field, order := st.SortBy, st.SortOrder
		if req.SortBy != nil {
			field = *req.SortBy
		}
		if req.SortOrder != nil {
			order = *req.SortOrder
		}
		pc.dashboard.SetSort(field, order)
	}
	if req.Page != nil {
		pc.dashboard.GoToPage(*req.Page)
	}
	sendJSON(w, http.StatusOK, pc.dashboard.Page())
}
