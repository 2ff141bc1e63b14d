package store

import "bizdash/app/models"

// SortOrder is the direction of the post list.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// DefaultItemsPerPage matches the dashboard's page size.
const DefaultItemsPerPage = 10

// State is an immutable snapshot of the entity store. Transitions never
// modify slices reachable from a previous snapshot, so a snapshot stays valid
// after later dispatches. Callers must not modify the slices either.
type State struct {
	IsAuthenticated bool            `json:"isAuthenticated"`
	User            *models.Account `json:"user"`

	Posts    []models.Post    `json:"posts"`
	Users    []models.User    `json:"users"`
	Comments []models.Comment `json:"comments"`

	Loading      bool      `json:"loading"`
	Error        string    `json:"error,omitempty"`
	CurrentPage  int       `json:"currentPage"`
	ItemsPerPage int       `json:"itemsPerPage"`
	SearchTerm   string    `json:"searchTerm"`
	SortBy       string    `json:"sortBy"`
	SortOrder    SortOrder `json:"sortOrder"`

	IsCreateModalOpen bool         `json:"isCreateModalOpen"`
	IsEditModalOpen   bool         `json:"isEditModalOpen"`
	IsDeleteModalOpen bool         `json:"isDeleteModalOpen"`
	SelectedItem      *models.Post `json:"selectedItem"`

	Notifications []models.Notification `json:"notifications"`
}

// DefaultState returns the initial dashboard state. itemsPerPage values
// below 1 fall back to DefaultItemsPerPage.
func DefaultState(itemsPerPage int) State {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	return State{
		Posts:         []models.Post{},
		Users:         []models.User{},
		Comments:      []models.Comment{},
		CurrentPage:   1,
		ItemsPerPage:  itemsPerPage,
		SortBy:        "id",
		SortOrder:     Asc,
		Notifications: []models.Notification{},
	}
}
