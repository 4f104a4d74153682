package project

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	MaxNameLength          = 100
	MaxURLLength           = 255
	MaxImageFilenameLength = 100
)

// allowedExtensions is the set of image types the catalog accepts.
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

type Project struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	ProjectURL    *string   `json:"project_url"`
	ImageFilename *string   `json:"image_filename"`
	DateAdded     time.Time `json:"date_added"`
	Version       int64     `json:"-"`
}

// New returns a candidate project with normalised fields. The id is assigned
// by the repository on insert.
func New(name string, description, projectURL *string) Project {
	return Project{
		Name:        strings.TrimSpace(name),
		Description: NormalizeOptional(description),
		ProjectURL:  NormalizeOptional(projectURL),
		DateAdded:   time.Now().UTC(),
		Version:     1,
	}
}

// HasImage reports whether the project references a blob.
func (p Project) HasImage() bool {
	return p.ImageFilename != nil && *p.ImageFilename != ""
}

// Patch carries a partial update. Nil fields keep their stored value; a
// non-nil empty Description or ProjectURL clears it.
type Patch struct {
	Name        *string
	Description *string
	ProjectURL  *string
}

// Apply returns p with the patch merged over it.
func (pt Patch) Apply(p Project) Project {
	if pt.Name != nil {
		p.Name = strings.TrimSpace(*pt.Name)
	}
	if pt.Description != nil {
		p.Description = NormalizeOptional(pt.Description)
	}
	if pt.ProjectURL != nil {
		p.ProjectURL = NormalizeOptional(pt.ProjectURL)
	}
	return p
}

// NormalizeOptional trims s and maps empty results to nil.
func NormalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// AllowedExtension reports whether name carries an accepted image extension.
func AllowedExtension(name string) bool {
	return allowedExtensions[Extension(name)]
}

// AllowedExtensions returns the accepted extensions in sorted order.
func AllowedExtensions() []string {
	out := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
