package services

import (
	"errors"
	"fmt"
	"log"

	"bizdash/app/auth"
	"bizdash/app/models"
	"bizdash/app/notify"
	"bizdash/app/repositories"
	"bizdash/app/session"
	"bizdash/app/store"
)

// ErrInvalidCredentials is the only login failure reported to callers, so
// they cannot tell an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrNotAuthenticated is returned when a token does not match the active
// session.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthService bridges the session store and the entity store, and keeps the
// persisted auth token in step with both.
type AuthService struct {
	sessions *session.Store
	store    *store.Store
	kv       repositories.KV
	tokens   *auth.TokenManager
	notes    *notify.Queue
}

// NewAuthService creates an AuthService.
func NewAuthService(sessions *session.Store, st *store.Store, kv repositories.KV, tokens *auth.TokenManager, notes *notify.Queue) *AuthService {
	return &AuthService{
		sessions: sessions,
		store:    st,
		kv:       kv,
		tokens:   tokens,
		notes:    notes,
	}
}

// Restore logs the persisted user back in when the token and the user record
// survived a restart and the user is still the session's account. It
// reports whether a user was restored.
func (s *AuthService) Restore() (bool, error) {
	token, hasToken, err := s.kv.Get(repositories.KeyAuthToken)
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}
	var user models.Account
	hasUser, err := repositories.GetJSON(s.kv, repositories.KeyUser, &user)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	if !hasToken || token == "" || !hasUser {
		return false, nil
	}
	if cur, ok := s.sessions.Current(); !ok || cur.ID != user.ID {
		log.Printf("Persisted user %d does not match the session, not restoring", user.ID)
		return false, nil
	}
	s.store.Dispatch(store.Login{Account: user})
	return true, nil
}

// Register creates an account and logs it in, returning its token.
func (s *AuthService) Register(reg models.Registration) (models.Account, string, error) {
	acc, err := s.sessions.Register(reg)
	if err != nil {
		return models.Account{}, "", err
	}
	token, err := s.establish(acc)
	if err != nil {
		return models.Account{}, "", err
	}
	return acc.Redacted(), token, nil
}

// Login checks credentials and returns the account and a fresh token.
func (s *AuthService) Login(email, password string) (models.Account, string, error) {
	acc, ok, err := s.sessions.Login(email, password)
	if err != nil {
		return models.Account{}, "", err
	}
	if !ok {
		return models.Account{}, "", ErrInvalidCredentials
	}
	token, err := s.establish(acc)
	if err != nil {
		return models.Account{}, "", err
	}
	return acc.Redacted(), token, nil
}

func (s *AuthService) establish(acc models.Account) (string, error) {
	token, err := s.tokens.Generate(acc)
	if err != nil {
		return "", err
	}
	user := acc.Redacted()
	if err := s.kv.Set(repositories.KeyAuthToken, token); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	if err := repositories.SetJSON(s.kv, repositories.KeyUser, user); err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}
	s.store.Dispatch(store.Login{Account: user})
	s.notes.Post("Login successful!", models.KindSuccess)
	return token, nil
}

// Logout ends the session everywhere.
func (s *AuthService) Logout() error {
	if err := s.sessions.Logout(); err != nil {
		return err
	}
	if err := s.clear(); err != nil {
		return err
	}
	s.notes.Post("Logged out successfully", models.KindInfo)
	return nil
}

func (s *AuthService) clear() error {
	if err := s.kv.Remove(repositories.KeyAuthToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := s.kv.Remove(repositories.KeyUser); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	s.store.Dispatch(store.Logout{})
	return nil
}

// Current returns the logged-in account without its password.
func (s *AuthService) Current() (models.Account, bool) {
	acc, ok := s.sessions.Current()
	return acc.Redacted(), ok
}

// Authenticate checks that token was issued for the active account.
func (s *AuthService) Authenticate(token string) (models.Account, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.Account{}, err
	}
	id, err := claims.AccountID()
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	acc, ok := s.sessions.Current()
	if !ok || acc.ID != id {
		return models.Account{}, ErrNotAuthenticated
	}
	return acc.Redacted(), nil
}

func (s *AuthService) HasPermission(perm models.Permission) bool {
	return s.sessions.HasPermission(perm)
}

// Accounts lists every registered account without passwords.
func (s *AuthService) Accounts() []models.Account {
	accounts := s.sessions.Accounts()
	for i := range accounts {
		accounts[i] = accounts[i].Redacted()
	}
	return accounts
}

// UpdateAccount edits an account. When it is the logged-in one, the entity
// store and the persisted user follow the change.
func (s *AuthService) UpdateAccount(id int64, patch models.AccountPatch) (models.Account, error) {
	acc, err := s.sessions.UpdateAccount(id, patch)
	if err != nil {
		return models.Account{}, err
	}
	if cur, ok := s.sessions.Current(); ok && cur.ID == id {
		user := cur.Redacted()
		if err := repositories.SetJSON(s.kv, repositories.KeyUser, user); err != nil {
			return models.Account{}, fmt.Errorf("save user: %w", err)
		}
		s.store.Dispatch(store.Login{Account: user})
	}
	return acc.Redacted(), nil
}

// DeleteAccount removes an account, logging out if it was the active one.
func (s *AuthService) DeleteAccount(id int64) error {
	cur, wasActive := s.sessions.Current()
	if err := s.sessions.DeleteAccount(id); err != nil {
		return err
	}
	if wasActive && cur.ID == id {
		log.Printf("Active account %d deleted, ending session", id)
		return s.clear()
	}
	return nil
}
