// Package user manages back-office accounts stored as a document collection.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/umami-pos/api/internal/collection"
	"github.com/umami-pos/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalid            = errors.New("invalid user")
)

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	RestaurantRole string    `json:"restaurant_role"`
	HashedPassword string    `json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u User) GetID() string { return u.ID }

func (u User) WithID(id string) User {
	u.ID = id
	return u
}

func (u User) Active() bool {
	return u.Status == enum.UserStatusActive
}

// Fields is the editable part of a user. An empty Password keeps the
// current hash on update.
type Fields struct {
	Username       string
	Name           string
	Email          string
	Role           string
	Status         string
	RestaurantRole string
	Password       string
}

func (f *Fields) normalize() error {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Name = strings.TrimSpace(f.Name)
	if f.Status == "" {
		f.Status = enum.UserStatusActive
	}
	switch {
	case f.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalid)
	case f.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case !validRole(f.Role):
		return fmt.Errorf("%w: role must be ADMIN, MANAGER or CASHIER", ErrInvalid)
	case f.Status != enum.UserStatusActive && f.Status != enum.UserStatusInactive:
		return fmt.Errorf("%w: status must be ACTIVE or INACTIVE", ErrInvalid)
	}
	return nil
}

func validRole(role string) bool {
	switch role {
	case enum.UserRoleAdmin, enum.UserRoleManager, enum.UserRoleCashier:
		return true
	}
	return false
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Directory is the users collection with login and uniqueness rules.
type Directory struct {
	store collection.Store[User]
	now   func() time.Time
}

func NewDirectory(store collection.Store[User]) *Directory {
	return &Directory{store: store, now: time.Now}
}

func (d *Directory) List() []User {
	return d.store.Documents()
}

func (d *Directory) Get(id string) (User, error) {
	for _, u := range d.store.Documents() {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// Authenticate matches login against username or email and checks the
// password. Inactive users cannot log in.
func (d *Directory) Authenticate(login, password string) (User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return User{}, ErrInvalidCredentials
	}
	for _, u := range d.store.Documents() {
		if u.Username != login && u.Email != strings.ToLower(login) {
			continue
		}
		if !u.Active() {
			return User{}, ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
			return User{}, ErrInvalidCredentials
		}
		return u, nil
	}
	return User{}, ErrInvalidCredentials
}

func (d *Directory) Create(ctx context.Context, f Fields) (User, error) {
	if err := f.normalize(); err != nil {
		return User{}, err
	}
	if f.Password == "" {
		return User{}, fmt.Errorf("%w: password is required", ErrInvalid)
	}
	if d.taken(f, "") {
		return User{}, ErrDuplicate
	}
	hashed, err := HashPassword(f.Password)
	if err != nil {
		return User{}, err
	}
	return d.store.Add(ctx, User{
		Username:       f.Username,
		Name:           f.Name,
		Email:          f.Email,
		Role:           f.Role,
		Status:         f.Status,
		RestaurantRole: f.RestaurantRole,
		HashedPassword: hashed,
		CreatedAt:      d.now().UTC(),
	})
}

func (d *Directory) Update(ctx context.Context, id string, f Fields) (User, error) {
	u, err := d.Get(id)
	if err != nil {
		return User{}, err
	}
	if err := f.normalize(); err != nil {
		return User{}, err
	}
	if d.taken(f, id) {
		return User{}, ErrDuplicate
	}
	if f.Password != "" {
		if u.HashedPassword, err = HashPassword(f.Password); err != nil {
			return User{}, err
		}
	}
	u.Username = f.Username
	u.Name = f.Name
	u.Email = f.Email
	u.Role = f.Role
	u.Status = f.Status
	u.RestaurantRole = f.RestaurantRole
	if err := d.store.Update(ctx, id, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Delete removes the user. Unknown ids are ignored.
func (d *Directory) Delete(ctx context.Context, id string) error {
	return d.store.Remove(ctx, id)
}

func (d *Directory) taken(f Fields, exceptID string) bool {
	for _, u := range d.store.Documents() {
		if u.ID == exceptID {
			continue
		}
		if u.Username == f.Username || (f.Email != "" && u.Email == f.Email) {
			return true
		}
	}
	return false
}
