package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainproject "github.com/folio-dev/folio/internal/domain/project"
)

func strPtr(s string) *string { return &s }

func TestNew_Normalises(t *testing.T) {
	p := domainproject.New("  Portfolio Site  ", strPtr("   "), strPtr(" https://x.io "))
	assert.Equal(t, "Portfolio Site", p.Name)
	assert.Nil(t, p.Description)
	assert.Equal(t, "https://x.io", *p.ProjectURL)
	assert.False(t, p.DateAdded.IsZero())
	assert.Equal(t, int64(1), p.Version)
	assert.False(t, p.HasImage())
}

func TestPatch_Apply(t *testing.T) {
	img := "a_1.png"
	base := domainproject.Project{
		ID:            5,
		Name:          "old",
		Description:   strPtr("desc"),
		ProjectURL:    strPtr("https://old.io"),
		ImageFilename: &img,
	}

	tests := []struct {
		name  string
		patch domainproject.Patch
		check func(t *testing.T, got domainproject.Project)
	}{
		{
			name:  "empty patch keeps everything",
			patch: domainproject.Patch{},
			check: func(t *testing.T, got domainproject.Project) {
				assert.Equal(t, base, got)
			},
		},
		{
			name:  "name is trimmed",
			patch: domainproject.Patch{Name: strPtr("  new ")},
			check: func(t *testing.T, got domainproject.Project) {
				assert.Equal(t, "new", got.Name)
				assert.Equal(t, "desc", *got.Description)
			},
		},
		{
			name:  "empty description clears it",
			patch: domainproject.Patch{Description: strPtr("")},
			check: func(t *testing.T, got domainproject.Project) {
				assert.Nil(t, got.Description)
				assert.Equal(t, "https://old.io", *got.ProjectURL)
			},
		},
		{
			name:  "image is never touched",
			patch: domainproject.Patch{ProjectURL: strPtr("https://new.io")},
			check: func(t *testing.T, got domainproject.Project) {
				assert.Equal(t, "a_1.png", *got.ImageFilename)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, tc.patch.Apply(base))
		})
	}
}

func TestAllowedExtension(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png":       true,
		"A.JPG":       true,
		"b.jpeg":      true,
		"c.gif":       true,
		"d.webp":      true,
		"e.svg":       false,
		"noext":       false,
		"tricky.png.": false,
	} {
		assert.Equal(t, want, domainproject.AllowedExtension(name), name)
	}
	assert.Equal(t, []string{"gif", "jpeg", "jpg", "png", "webp"}, domainproject.AllowedExtensions())
}
