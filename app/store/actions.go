package store

import "bizdash/app/models"

// Tag names an action type.
type Tag string

const (
	TagLogin              Tag = "LOGIN"
	TagLogout             Tag = "LOGOUT"
	TagSetLoading         Tag = "SET_LOADING"
	TagSetError           Tag = "SET_ERROR"
	TagSetPosts           Tag = "SET_POSTS"
	TagSetUsers           Tag = "SET_USERS"
	TagSetComments        Tag = "SET_COMMENTS"
	TagSetCurrentPage     Tag = "SET_CURRENT_PAGE"
	TagSetSearchTerm      Tag = "SET_SEARCH_TERM"
	TagSetSort            Tag = "SET_SORT"
	TagOpenCreateModal    Tag = "OPEN_CREATE_MODAL"
	TagCloseCreateModal   Tag = "CLOSE_CREATE_MODAL"
	TagOpenEditModal      Tag = "OPEN_EDIT_MODAL"
	TagCloseEditModal     Tag = "CLOSE_EDIT_MODAL"
	TagOpenDeleteModal    Tag = "OPEN_DELETE_MODAL"
	TagCloseDeleteModal   Tag = "CLOSE_DELETE_MODAL"
	TagSetSelectedItem    Tag = "SET_SELECTED_ITEM"
	TagAddNotification    Tag = "ADD_NOTIFICATION"
	TagRemoveNotification Tag = "REMOVE_NOTIFICATION"
	TagCreatePost         Tag = "CREATE_POST"
	TagUpdatePost         Tag = "UPDATE_POST"
	TagDeletePost         Tag = "DELETE_POST"
)

// Action is a state transition request. The set of actions is closed: only
// types in this package implement it.
type Action interface {
	Tag() Tag
	isAction()
}

type (
	Login  struct{ Account models.Account }
	Logout struct{}

	SetLoading  struct{ Loading bool }
	SetError    struct{ Message string }
	SetPosts    struct{ Posts []models.Post }
	SetUsers    struct{ Users []models.User }
	SetComments struct{ Comments []models.Comment }

	SetCurrentPage struct{ Page int }
	SetSearchTerm  struct{ Term string }
	SetSort        struct {
		SortBy string
		Order  SortOrder
	}

	OpenCreateModal  struct{}
	CloseCreateModal struct{}
	OpenEditModal    struct{ Post models.Post }
	CloseEditModal   struct{}
	OpenDeleteModal  struct{ Post models.Post }
	CloseDeleteModal struct{}
	// SetSelectedItem with a nil Post clears the selection.
	SetSelectedItem struct{ Post *models.Post }

	AddNotification    struct{ Notification models.Notification }
	RemoveNotification struct{ ID int64 }

	CreatePost struct{ Post models.Post }
	UpdatePost struct{ Post models.Post }
	DeletePost struct{ ID int64 }
)

func (Login) Tag() Tag              { return TagLogin }
func (Logout) Tag() Tag             { return TagLogout }
func (SetLoading) Tag() Tag         { return TagSetLoading }
func (SetError) Tag() Tag           { return TagSetError }
func (SetPosts) Tag() Tag           { return TagSetPosts }
func (SetUsers) Tag() Tag           { return TagSetUsers }
func (SetComments) Tag() Tag        { return TagSetComments }
func (SetCurrentPage) Tag() Tag     { return TagSetCurrentPage }
func (SetSearchTerm) Tag() Tag      { return TagSetSearchTerm }
func (SetSort) Tag() Tag            { return TagSetSort }
func (OpenCreateModal) Tag() Tag    { return TagOpenCreateModal }
func (CloseCreateModal) Tag() Tag   { return TagCloseCreateModal }
func (OpenEditModal) Tag() Tag      { return TagOpenEditModal }
func (CloseEditModal) Tag() Tag     { return TagCloseEditModal }
func (OpenDeleteModal) Tag() Tag    { return TagOpenDeleteModal }
func (CloseDeleteModal) Tag() Tag   { return TagCloseDeleteModal }
func (SetSelectedItem) Tag() Tag    { return TagSetSelectedItem }
func (AddNotification) Tag() Tag    { return TagAddNotification }
func (RemoveNotification) Tag() Tag { return TagRemoveNotification }
func (CreatePost) Tag() Tag         { return TagCreatePost }
func (UpdatePost) Tag() Tag         { return TagUpdatePost }
func (DeletePost) Tag() Tag         { return TagDeletePost }

func (Login) isAction()              {}
func (Logout) isAction()             {}
func (SetLoading) isAction()         {}
func (SetError) isAction()           {}
func (SetPosts) isAction()           {}
func (SetUsers) isAction()           {}
func (SetComments) isAction()        {}
func (SetCurrentPage) isAction()     {}
func (SetSearchTerm) isAction()      {}
func (SetSort) isAction()            {}
func (OpenCreateModal) isAction()    {}
func (CloseCreateModal) isAction()   {}
func (OpenEditModal) isAction()      {}
func (CloseEditModal) isAction()     {}
func (OpenDeleteModal) isAction()    {}
func (CloseDeleteModal) isAction()   {}
func (SetSelectedItem) isAction()    {}
func (AddNotification) isAction()    {}
func (RemoveNotification) isAction() {}
func (CreatePost) isAction()         {}
func (UpdatePost) isAction()         {}
func (DeletePost) isAction()         {}
