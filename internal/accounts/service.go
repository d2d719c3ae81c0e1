// Package accounts holds the server's business logic: users, their data blobs and the admin
// view over both.
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"example.com/lifetrack/internal/auth"
	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/logger"
)

var (
	// ErrMissingCredentials is returned when username or password is blank.
	ErrMissingCredentials = errors.New("username and password required")
	// ErrUsernameTaken is returned by Register for an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned by Login for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidKey is returned for data keys outside the allowed alphabet.
	ErrInvalidKey = errors.New("invalid data key")
	// ErrInvalidData is returned when a data body is not JSON.
	ErrInvalidData = errors.New("invalid json body")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// DataEntry is one stored blob.
type DataEntry struct {
	Key       string
	Value     json.RawMessage
	UpdatedAt time.Time
}

// Stats summarises the whole store for the admin dashboard.
type Stats struct {
	Users       int `json:"users"`
	DataEntries int `json:"dataEntries"`
}

// Cursor models the admin user-list pagination token.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// Repository captures persistence operations.
type Repository interface {
	// CreateUser returns ErrUsernameTaken when the username exists.
	CreateUser(ctx context.Context, username, passwordHash string, createdAt time.Time) (User, error)
	// UserByUsername and UserByID return nil without error when no row matches.
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserByID(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context, cursor *Cursor, limit int) ([]User, *Cursor, error)
	// GetData returns nil without error when nothing is stored under key.
	GetData(ctx context.Context, userID int64, key string) (*DataEntry, error)
	PutData(ctx context.Context, userID int64, key string, value json.RawMessage, updatedAt time.Time) error
	ListData(ctx context.Context, userID int64) ([]DataEntry, error)
	Stats(ctx context.Context) (Stats, error)
}

// Cache fronts Repository.GetData.
type Cache interface {
	Get(ctx context.Context, userID int64, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, userID int64, key string, value json.RawMessage) error
	Delete(ctx context.Context, userID int64, key string) error
}

// DataSaved is announced after every successful save.
type DataSaved struct {
	UserID  int64     `json:"user_id"`
	Key     string    `json:"key"`
	Bytes   int       `json:"bytes"`
	SavedAt time.Time `json:"saved_at"`
}

// Publisher announces saves to downstream consumers.
type Publisher interface {
	PublishDataSaved(ctx context.Context, event DataSaved) error
}

// Session is what register and login hand back to the client.
type Session struct {
	Token string
	User  User
}

// Service orchestrates account and data workflows.
type Service struct {
	repo   Repository
	cache  Cache
	events Publisher
	tokens auth.Config
	clock  clock.Clock
	log    *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithPublisher(p Publisher) Option { return func(s *Service) { s.events = p } }

func WithClock(c clock.Clock) Option { return func(s *Service) { s.clock = c } }

func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = l } }

// NewService constructs a Service.
func NewService(repo Repository, tokens auth.Config, opts ...Option) *Service {
	s := &Service{repo: repo, tokens: tokens, clock: clock.Real(), log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user and returns a session for it.
func (s *Service) Register(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, username, hash, s.clock.Now().UTC())
	if err != nil {
		return Session{}, err
	}
	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.session(user)
}

// Login checks credentials and returns a fresh session.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}
	user, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		return Session{}, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(*user)
}

func (s *Service) session(user User) (Session, error) {
	token, err := auth.Issue(s.tokens, user.ID, user.Username, s.clock.Now())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, User: user}, nil
}

// Load returns the blob stored under key, or nil when there is none.
func (s *Service) Load(ctx context.Context, userID int64, key string) (json.RawMessage, error) {
	if !keyPattern.MatchString(key) {
		return nil, ErrInvalidKey
	}
	if s.cache != nil {
		if value, ok, err := s.cache.Get(ctx, userID, key); err != nil {
			s.log.Warn("cache read failed", "user_id", userID, "key", key, "error", err)
		} else if ok {
			return value, nil
		}
	}
	entry, err := s.repo.GetData(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, key, entry.Value); err != nil {
			s.log.Warn("cache fill failed", "user_id", userID, "key", key, "error", err)
		}
	}
	return entry.Value, nil
}

// Save replaces the blob stored under key.
func (s *Service) Save(ctx context.Context, userID int64, key string, value json.RawMessage) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	if !json.Valid(value) {
		return ErrInvalidData
	}
	now := s.clock.Now().UTC()
	if err := s.repo.PutData(ctx, userID, key, value, now); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, userID, key); err != nil {
			s.log.Warn("cache invalidation failed", "user_id", userID, "key", key, "error", err)
		}
	}
	if s.events != nil {
		event := DataSaved{UserID: userID, Key: key, Bytes: len(value), SavedAt: now}
		if err := s.events.PublishDataSaved(ctx, event); err != nil {
			s.log.Warn("publish data saved failed", "user_id", userID, "key", key, "error", err)
		}
	}
	return nil
}

// Stats returns store-wide counts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

// Users lists accounts oldest first with cursor pagination.
func (s *Service) Users(ctx context.Context, cursor *Cursor, limit int) ([]User, *Cursor, error) {
	return s.repo.ListUsers(ctx, cursor, limit)
}

// UserData returns every blob a user has stored.
func (s *Service) UserData(ctx context.Context, userID int64) ([]DataEntry, error) {
	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.repo.ListData(ctx, userID)
}
