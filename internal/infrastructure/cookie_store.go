package infrastructure

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CookieStore persists uploaded cookies.txt files under the cookies
// directory. Cookie files carry session credentials, so they are written
// with 0600 permissions and removed only through an explicit delete.
type CookieStore struct {
	dir string
}

// NewCookieStore creates a cookie store rooted at dir
func NewCookieStore(dir string) *CookieStore {
	return &CookieStore{dir: dir}
}

// Save writes an uploaded cookie file under the given name and returns
// its path. The name is flattened to a bare filename so uploads cannot
// escape the cookies directory.
func (s *CookieStore) Save(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create cookies directory: %w", err)
	}

	name = sanitizeCookieName(name)
	if name == "" {
		return "", fmt.Errorf("invalid cookie file name")
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create cookie file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write cookie file: %w", err)
	}
	return path, nil
}

// Path returns the path of a stored cookie file, or empty when the name
// is unset or the file no longer exists
func (s *CookieStore) Path(name string) string {
	if name == "" {
		return ""
	}
	path := filepath.Join(s.dir, sanitizeCookieName(name))
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// List returns the names of all stored cookie files
func (s *CookieStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cookies directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Remove deletes a stored cookie file
func (s *CookieStore) Remove(name string) error {
	name = sanitizeCookieName(name)
	if name == "" {
		return fmt.Errorf("invalid cookie file name")
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to remove cookie file: %w", err)
	}
	return nil
}

// sanitizeCookieName reduces a client-supplied name to a safe filename
func sanitizeCookieName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
