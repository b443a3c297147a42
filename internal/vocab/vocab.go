// Package vocab stores custom vocabularies used to bias transcription
// accuracy. User vocabularies live in a single JSON file; system
// vocabularies are loaded read-only from a bundled directory.
package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryID is the category user-created vocabularies land in.
const DefaultCategoryID = "my-vocabularies"

const userFileName = "vocabularies.json"

// ErrNotFound is returned when no vocabulary has the requested ID.
var ErrNotFound = errors.New("vocabulary not found")

// ErrSystemVocabulary is returned on attempts to modify a system vocabulary.
var ErrSystemVocabulary = errors.New("cannot modify system vocabulary")

// Vocabulary is a named list of terms in a category.
type Vocabulary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Terms     []string `json:"terms"`
	IsSystem  bool     `json:"is_system,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// Category groups vocabularies.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsSystem bool   `json:"is_system,omitempty"`
}

// Data is the full set of categories and vocabularies visible to a user.
type Data struct {
	Categories   []Category   `json:"categories"`
	Vocabularies []Vocabulary `json:"vocabularies"`
}

// systemFile is the on-disk layout of one bundled system vocabulary file:
// a category plus its vocabularies.
type systemFile struct {
	Category     Category     `json:"category"`
	Vocabularies []Vocabulary `json:"vocabularies"`
}

// Store reads and writes vocabularies. User data is kept in
// <userDir>/vocabularies.json; systemDir may be empty.
type Store struct {
	userDir   string
	systemDir string
}

// NewStore returns a store rooted at userDir. systemDir is optional and
// read-only when set.
func NewStore(userDir, systemDir string) *Store {
	return &Store{userDir: userDir, systemDir: systemDir}
}

func (s *Store) userFile() string {
	return filepath.Join(s.userDir, userFileName)
}

// Load returns all system and user vocabularies merged, system first.
func (s *Store) Load() (*Data, error) {
	data := &Data{}

	if s.systemDir != "" {
		entries, err := os.ReadDir(s.systemDir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
					continue
				}
				content, err := os.ReadFile(filepath.Join(s.systemDir, entry.Name()))
				if err != nil {
					continue
				}
				var sf systemFile
				if err := json.Unmarshal(content, &sf); err != nil {
					// A broken bundled file must not block user vocabularies.
					continue
				}
				sf.Category.IsSystem = true
				data.Categories = append(data.Categories, sf.Category)
				for _, v := range sf.Vocabularies {
					v.IsSystem = true
					v.Category = sf.Category.ID
					data.Vocabularies = append(data.Vocabularies, v)
				}
			}
		}
	}

	user, err := s.loadUser()
	if err != nil {
		return nil, err
	}
	data.Categories = append(data.Categories, user.Categories...)
	data.Vocabularies = append(data.Vocabularies, user.Vocabularies...)
	return data, nil
}

// loadUser reads the user vocabulary file, returning a default structure
// when none exists yet.
func (s *Store) loadUser() (*Data, error) {
	content, err := os.ReadFile(s.userFile())
	if errors.Is(err, os.ErrNotExist) {
		return &Data{
			Categories: []Category{{ID: DefaultCategoryID, Name: "My Vocabularies"}},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabularies: %w", err)
	}
	var data Data
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse vocabularies: %w", err)
	}
	return &data, nil
}

func (s *Store) saveUser(data *Data) error {
	if err := os.MkdirAll(s.userDir, 0755); err != nil {
		return fmt.Errorf("failed to create vocabulary directory: %w", err)
	}
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal vocabularies: %w", err)
	}
	if err := os.WriteFile(s.userFile(), content, 0600); err != nil {
		return fmt.Errorf("failed to write vocabularies: %w", err)
	}
	return nil
}

// Create adds a new user vocabulary and returns it.
func (s *Store) Create(name, category string, terms []string) (*Vocabulary, error) {
	if category == "" {
		category = DefaultCategoryID
	}
	now := time.Now().UTC().Format(time.RFC3339)
	v := Vocabulary{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Terms:     terms,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user, err := s.loadUser()
	if err != nil {
		return nil, err
	}
	user.Vocabularies = append(user.Vocabularies, v)
	if err := s.saveUser(user); err != nil {
		return nil, err
	}
	return &v, nil
}

// Update replaces the name, category, and terms of the vocabulary with the
// given ID. Empty name/category and nil terms leave the field unchanged.
func (s *Store) Update(id, name, category string, terms []string) (*Vocabulary, error) {
	user, err := s.loadUser()
	if err != nil {
		return nil, err
	}
	for i := range user.Vocabularies {
		v := &user.Vocabularies[i]
		if v.ID != id {
			continue
		}
		if v.IsSystem {
			return nil, ErrSystemVocabulary
		}
		if name != "" {
			v.Name = name
		}
		if category != "" {
			v.Category = category
		}
		if terms != nil {
			v.Terms = terms
		}
		v.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		updated := *v
		if err := s.saveUser(user); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Delete removes the user vocabulary with the given ID.
func (s *Store) Delete(id string) error {
	user, err := s.loadUser()
	if err != nil {
		return err
	}
	for i, v := range user.Vocabularies {
		if v.ID != id {
			continue
		}
		if v.IsSystem {
			return ErrSystemVocabulary
		}
		user.Vocabularies = append(user.Vocabularies[:i], user.Vocabularies[i+1:]...)
		return s.saveUser(user)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Duplicate copies any visible vocabulary (system included) into the user
// default category under newName.
func (s *Store) Duplicate(id, newName string) (*Vocabulary, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	var source *Vocabulary
	for i := range all.Vocabularies {
		if all.Vocabularies[i].ID == id {
			source = &all.Vocabularies[i]
			break
		}
	}
	if source == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	copied := Vocabulary{
		ID:        uuid.NewString(),
		Name:      newName,
		Category:  DefaultCategoryID,
		Terms:     append([]string(nil), source.Terms...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	user, err := s.loadUser()
	if err != nil {
		return nil, err
	}
	user.Vocabularies = append(user.Vocabularies, copied)
	if err := s.saveUser(user); err != nil {
		return nil, err
	}
	return &copied, nil
}

// CreateCategory adds a user category. The ID is the lowercased name with
// spaces replaced by hyphens.
func (s *Store) CreateCategory(name string) (*Category, error) {
	c := Category{
		ID:   strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		Name: name,
	}
	user, err := s.loadUser()
	if err != nil {
		return nil, err
	}
	user.Categories = append(user.Categories, c)
	if err := s.saveUser(user); err != nil {
		return nil, err
	}
	return &c, nil
}

// ExportJSON writes the user vocabularies (not system ones) to w.
func (s *Store) ExportJSON(w io.Writer) error {
	user, err := s.loadUser()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(user)
}

// ImportJSON merges vocabularies from r into the user data. Imported
// vocabularies get fresh IDs so repeated imports cannot collide; categories
// are merged by ID. Returns the number of vocabularies imported.
func (s *Store) ImportJSON(r io.Reader) (int, error) {
	var incoming Data
	if err := json.NewDecoder(r).Decode(&incoming); err != nil {
		return 0, fmt.Errorf("failed to parse import: %w", err)
	}
	user, err := s.loadUser()
	if err != nil {
		return 0, err
	}
	for _, c := range incoming.Categories {
		exists := false
		for _, have := range user.Categories {
			if have.ID == c.ID {
				exists = true
				break
			}
		}
		if !exists {
			c.IsSystem = false
			user.Categories = append(user.Categories, c)
		}
	}
	for _, v := range incoming.Vocabularies {
		v.ID = uuid.NewString()
		v.IsSystem = false
		user.Vocabularies = append(user.Vocabularies, v)
	}
	if err := s.saveUser(user); err != nil {
		return 0, err
	}
	return len(incoming.Vocabularies), nil
}
