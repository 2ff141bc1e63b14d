// Package session keeps the locally registered accounts and the single
// active session, persisted through a repositories.KV.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"bizdash/app/models"
	"bizdash/app/repositories"
	"bizdash/app/scheduler"
)

// ErrAccountNotFound is returned when an id matches no account.
var ErrAccountNotFound = errors.New("account not found")

// DefaultAdmin is seeded when storage holds no account collection yet.
var DefaultAdmin = models.Registration{
	Name:     "Admin User",
	Email:    "admin@bod.com",
	Password: "password",
	Role:     models.RoleAdmin,
}

// Store holds accounts and the current session.
type Store struct {
	kv     repositories.KV
	clock  scheduler.Clock
	ids    *scheduler.IDSource
	hasher PasswordHasher
	seed   *models.Registration

	mu       sync.RWMutex
	accounts []models.Account
	current  *models.Account
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for ids and creation times.
func WithClock(c scheduler.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDSource shares an id source with other components.
func WithIDSource(ids *scheduler.IDSource) Option {
	return func(s *Store) { s.ids = ids }
}

// WithPasswordHasher selects how passwords are stored.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Store) { s.hasher = h }
}

// WithSeed replaces the default admin seeded into empty storage. A nil seed
// disables seeding.
func WithSeed(seed *models.Registration) Option {
	return func(s *Store) { s.seed = seed }
}

// Open loads accounts and the session from kv.
func Open(kv repositories.KV, opts ...Option) (*Store, error) {
	admin := DefaultAdmin
	s := &Store{
		kv:     kv,
		clock:  scheduler.RealClock{},
		hasher: PlainHasher{},
		seed:   &admin,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = scheduler.NewIDSource(s.clock)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var accounts []models.Account
	found, err := repositories.GetJSON(s.kv, repositories.KeyAccounts, &accounts)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	if !found {
		accounts = []models.Account{}
		if s.seed != nil {
			acc, err := s.newAccount(*s.seed)
			if err != nil {
				return fmt.Errorf("seed account: %w", err)
			}
			acc.ID = 1
			accounts = append(accounts, acc)
		}
		if err := repositories.SetJSON(s.kv, repositories.KeyAccounts, accounts); err != nil {
			return fmt.Errorf("save accounts: %w", err)
		}
	}

	var current models.Account
	hasSession, err := repositories.GetJSON(s.kv, repositories.KeyCurrentUser, &current)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.accounts = accounts
	if hasSession && slices.ContainsFunc(accounts, func(a models.Account) bool { return a.ID == current.ID }) {
		s.current = &current
	}
	return nil
}

func (s *Store) newAccount(reg models.Registration) (models.Account, error) {
	hashed, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}
	role := reg.Role
	if role == "" {
		role = models.RoleViewer
	}
	return models.Account{
		ID:        s.ids.Next(),
		Name:      reg.Name,
		Email:     models.NormalizeEmail(reg.Email),
		Password:  hashed,
		Role:      role,
		Avatar:    reg.Avatar,
		CreatedAt: s.clock.Now().UTC(),
		IsActive:  true,
	}, nil
}

// Register validates candidate, stores a new account and makes it the active
// session.
func (s *Store) Register(candidate models.Registration) (models.Account, error) {
	candidate.Normalize()
	if err := candidate.Validate(); err != nil {
		return models.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexByEmail(candidate.Email) >= 0 {
		return models.Account{}, models.NewValidationError("email", "A user with this email already exists")
	}
	acc, err := s.newAccount(candidate)
	if err != nil {
		return models.Account{}, err
	}

	accounts := append(slices.Clone(s.accounts), acc)
	if err := s.commit(accounts, &acc); err != nil {
		return models.Account{}, err
	}
	return acc, nil
}

// Login returns the active account matching email and password and makes it
// the session. A mismatch reports ok=false and leaves the session alone; err
// is reserved for storage failures.
func (s *Store) Login(email, password string) (acc models.Account, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByEmail(models.NormalizeEmail(email))
	if i < 0 {
		return models.Account{}, false, nil
	}
	found := s.accounts[i]
	if !found.IsActive || !s.hasher.Compare(found.Password, password) {
		return models.Account{}, false, nil
	}
	if err := s.commit(s.accounts, &found); err != nil {
		return models.Account{}, false, err
	}
	return found, true, nil
}

// Logout clears the session.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.accounts, nil)
}

// UpdateAccount merges patch into the account with id. A password in the
// patch is given in plaintext and hashed here. The email must stay unique.
func (s *Store) UpdateAccount(id int64, patch models.AccountPatch) (models.Account, error) {
	if err := patch.Validate(); err != nil {
		return models.Account{}, err
	}
	if patch.Password != nil {
		hashed, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return models.Account{}, fmt.Errorf("hash password: %w", err)
		}
		patch.Password = &hashed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(id)
	if i < 0 {
		return models.Account{}, ErrAccountNotFound
	}
	if patch.Email != nil {
		if j := s.indexByEmail(models.NormalizeEmail(*patch.Email)); j >= 0 && j != i {
			return models.Account{}, models.NewValidationError("email", "A user with this email already exists")
		}
	}
	accounts := slices.Clone(s.accounts)
	accounts[i] = patch.Apply(accounts[i])

	current := s.current
	if current != nil && current.ID == id {
		merged := patch.Apply(*current)
		current = &merged
	}
	if err := s.commit(accounts, current); err != nil {
		return models.Account{}, err
	}
	return accounts[i], nil
}

// DeleteAccount removes the account with id, ending the session if it was
// the active one.
func (s *Store) DeleteAccount(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(id)
	if i < 0 {
		return ErrAccountNotFound
	}
	accounts := slices.Delete(slices.Clone(s.accounts), i, i+1)

	current := s.current
	if current != nil && current.ID == id {
		current = nil
	}
	return s.commit(accounts, current)
}

// Current returns the active account, if any.
func (s *Store) Current() (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.Account{}, false
	}
	return *s.current, true
}

// Accounts returns a copy of all accounts.
func (s *Store) Accounts() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.accounts)
}

// HasPermission reports whether the active account's role grants perm.
func (s *Store) HasPermission(perm models.Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return false
	}
	return Grants(s.current.Role, perm)
}

// commit persists accounts and current, then makes them live. On a storage
// error nothing changes in memory. Callers hold s.mu.
func (s *Store) commit(accounts []models.Account, current *models.Account) error {
	if err := repositories.SetJSON(s.kv, repositories.KeyAccounts, accounts); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	if current != nil {
		if err := repositories.SetJSON(s.kv, repositories.KeyCurrentUser, current); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	} else if err := s.kv.Remove(repositories.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.accounts = accounts
	s.current = current
	return nil
}

func (s *Store) indexByEmail(email string) int {
	return slices.IndexFunc(s.accounts, func(a models.Account) bool {
		return models.NormalizeEmail(a.Email) == email
	})
}

func (s *Store) indexByID(id int64) int {
	return slices.IndexFunc(s.accounts, func(a models.Account) bool { return a.ID == id })
}
