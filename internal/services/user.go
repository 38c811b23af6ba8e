// internal/services/user.go
package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tahcohcat/liferpg-web/internal/logger"
	"github.com/tahcohcat/liferpg-web/internal/models"
)

// Usernames double as namespace keys in the blob store.
var usernameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,38}$`)

// UserService holds the accounts allowed to log in. They come from
// configuration; plain passwords are hashed when the service is built.
type UserService struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewUserService(accounts map[string]string) (*UserService, error) {
	s := &UserService{users: make(map[string]*models.User, len(accounts))}
	for name, secret := range accounts {
		username := strings.ToLower(strings.TrimSpace(name))
		if !usernameRe.MatchString(username) {
			return nil, fmt.Errorf("invalid username %q", name)
		}
		user := &models.User{Username: username}
		if models.IsBcryptHash(secret) {
			user.Password = secret
		} else {
			if secret == "" {
				return nil, fmt.Errorf("user %s has an empty password", username)
			}
			if err := user.SetPassword(secret); err != nil {
				return nil, fmt.Errorf("failed to hash password for %s: %w", username, err)
			}
			logger.New().Warnf("User %s has a plain-text password in config, consider storing a bcrypt hash", username)
		}
		s.users[username] = user
	}
	return s, nil
}

// AuthenticateUser validates login credentials and returns the user
func (s *UserService) AuthenticateUser(req *models.LoginRequest) (*models.User, error) {
	user, err := s.GetUserByUsername(req.Username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !user.CheckPassword(req.Password) {
		return nil, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their username
func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func (s *UserService) UsernameExists(username string) bool {
	_, err := s.GetUserByUsername(username)
	return err == nil
}

// Usernames lists the configured accounts, sorted.
func (s *UserService) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChangePassword replaces the in-memory hash. It does not rewrite the
// config file, so the change lasts until restart.
func (s *UserService) ChangePassword(username, currentPassword, newPassword string) error {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !user.CheckPassword(currentPassword) {
		return fmt.Errorf("current password is incorrect")
	}
	if len(newPassword) < 4 {
		return fmt.Errorf("new password is too short")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	return nil
}
