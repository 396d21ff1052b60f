package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	usersFile    = "users.json"
	pathsFile    = "learning_paths.json"
	progressFile = "progress.json"
)

// Store is a file-backed implementation of the repository interfaces, meant
// for local development and tests. All three collections are held in memory
// and flushed to JSON files after each write; a write that fails to flush
// is rolled back so memory, disk, and the returned error agree. Access the
// individual repositories through Users, Paths, and Progress.
//
// Layout on disk:
//   - users.json:          username -> User
//   - learning_paths.json: user id  -> ordered list of LearningPath
//   - progress.json:       user id  -> topic -> latest ProgressUpdate
type Store struct {
	mu  sync.RWMutex
	dir string
	log *logrus.Logger

	// When true a failed flush is logged and swallowed instead of being
	// returned to the caller. Off by default.
	degradedWrites bool

	users    map[string]userRecord
	paths    map[string][]domain.LearningPath
	progress map[string]map[string]domain.ProgressUpdate
}

// userRecord mirrors domain.User with the password hash serializable. The
// domain type hides the hash from JSON, which is right for API responses
// but would strip it from users.json.
type userRecord struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		LastLogin:    r.LastLogin,
	}
}

// Open loads the store from dir, creating it if needed. Missing or
// unreadable files start as empty collections, never an error.
func Open(dir string, degradedWrites bool, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		dir:            dir,
		log:            log,
		degradedWrites: degradedWrites,
		users:          map[string]userRecord{},
		paths:          map[string][]domain.LearningPath{},
		progress:       map[string]map[string]domain.ProgressUpdate{},
	}

	s.loadFile(usersFile, &s.users)
	s.loadFile(pathsFile, &s.paths)
	s.loadFile(progressFile, &s.progress)

	return s, nil
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return (*userStore)(s) }

// Paths returns the learning path repository view of the store.
func (s *Store) Paths() repository.LearningPathRepository { return (*pathStore)(s) }

// Progress returns the progress repository view of the store.
func (s *Store) Progress() repository.ProgressRepository { return (*progressStore)(s) }

func (s *Store) loadFile(name string, out any) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).WithField("file", name).Warn("could not load data file, starting empty")
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.WithError(err).WithField("file", name).Warn("could not parse data file, starting empty")
	}
}

func (s *Store) flush(name string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
	}
	if err != nil {
		if s.degradedWrites {
			s.log.WithError(err).WithField("file", name).Warn("could not save data file")
			return nil
		}
		return fmt.Errorf("%w: %s: %v", repository.ErrWriteFailed, name, err)
	}
	return nil
}

// Callers get independent snapshots: every path and update crossing the
// store boundary is deep-copied in both directions, so mutating a returned
// value (or a value after saving it) cannot touch the in-memory state.

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneUpdate(u domain.ProgressUpdate) domain.ProgressUpdate {
	u.CompletedItems = cloneStrings(u.CompletedItems)
	if u.MoodRating != nil {
		m := *u.MoodRating
		u.MoodRating = &m
	}
	if u.HoursSpent != nil {
		h := *u.HoursSpent
		u.HoursSpent = &h
	}
	return u
}

func clonePath(p *domain.LearningPath) domain.LearningPath {
	out := *p
	if p.StudyPlan.Weeks != nil {
		out.StudyPlan.Weeks = make([]domain.WeeklyUnit, len(p.StudyPlan.Weeks))
		for i, w := range p.StudyPlan.Weeks {
			w.Objectives = cloneStrings(w.Objectives)
			if w.Resources != nil {
				res := make([]domain.LearningResource, len(w.Resources))
				copy(res, w.Resources)
				for j := range res {
					res[j].Tags = cloneStrings(res[j].Tags)
				}
				w.Resources = res
			}
			out.StudyPlan.Weeks[i] = w
		}
	}
	if p.ProgressUpdates != nil {
		out.ProgressUpdates = make([]domain.ProgressUpdate, len(p.ProgressUpdates))
		for i, u := range p.ProgressUpdates {
			out.ProgressUpdates[i] = cloneUpdate(u)
		}
	}
	out.Recommendations = cloneStrings(p.Recommendations)
	return out
}

// --- UserRepository ---

type userStore Store

func (s *userStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return repository.ErrDuplicate
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.Username] = toUserRecord(user)
	if err := (*Store)(s).flush(usersFile, s.users); err != nil {
		delete(s.users, user.Username)
		return err
	}
	return nil
}

func (s *userStore) Update(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[user.Username]
	if !ok {
		return repository.ErrNotFound
	}
	s.users[user.Username] = toUserRecord(user)
	if err := (*Store)(s).flush(usersFile, s.users); err != nil {
		s.users[user.Username] = prev
		return err
	}
	return nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return record.toDomain(), nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u.toDomain(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *userStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u.toDomain(), nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- LearningPathRepository ---

type pathStore Store

// Save upserts by exact topic match, preserving the list position of a
// replaced path. The stored copy is committed only after a successful flush.
func (s *pathStore) Save(ctx context.Context, userID string, path *domain.LearningPath) error {
	if userID == "" || path == nil || path.Topic == "" {
		return errors.New("user ID and path topic are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path.UserID = userID
	stored := s.paths[userID]
	next := make([]domain.LearningPath, len(stored))
	copy(next, stored)

	clone := clonePath(path)
	replaced := false
	for i := range next {
		if next[i].Topic == path.Topic {
			next[i] = clone
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, clone)
	}
	s.paths[userID] = next

	if err := (*Store)(s).flush(pathsFile, s.paths); err != nil {
		if stored == nil {
			delete(s.paths, userID)
		} else {
			s.paths[userID] = stored
		}
		return err
	}
	return nil
}

func (s *pathStore) GetAllByUser(ctx context.Context, userID string) ([]domain.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.paths[userID]
	out := make([]domain.LearningPath, len(stored))
	for i := range stored {
		out[i] = clonePath(&stored[i])
	}
	return out, nil
}

func (s *pathStore) GetByTopic(ctx context.Context, userID, topic string) (*domain.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.paths[userID] {
		if strings.EqualFold(s.paths[userID][i].Topic, topic) {
			path := clonePath(&s.paths[userID][i])
			return &path, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- ProgressRepository ---

type progressStore Store

func (s *progressStore) Save(ctx context.Context, userID, topic string, update *domain.ProgressUpdate) error {
	if userID == "" || topic == "" || update == nil {
		return errors.New("user ID, topic, and update are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byTopic, hadUser := s.progress[userID]
	if byTopic == nil {
		byTopic = map[string]domain.ProgressUpdate{}
		s.progress[userID] = byTopic
	}
	prev, hadTopic := byTopic[topic]
	byTopic[topic] = cloneUpdate(*update)

	if err := (*Store)(s).flush(progressFile, s.progress); err != nil {
		switch {
		case !hadUser:
			delete(s.progress, userID)
		case hadTopic:
			byTopic[topic] = prev
		default:
			delete(byTopic, topic)
		}
		return err
	}
	return nil
}

func (s *progressStore) GetAllByUser(ctx context.Context, userID string) (map[string]domain.ProgressUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.ProgressUpdate, len(s.progress[userID]))
	for topic, update := range s.progress[userID] {
		out[topic] = cloneUpdate(update)
	}
	return out, nil
}

func (s *progressStore) GetByTopic(ctx context.Context, userID, topic string) (*domain.ProgressUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	update, ok := s.progress[userID][topic]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := cloneUpdate(update)
	return &clone, nil
}
