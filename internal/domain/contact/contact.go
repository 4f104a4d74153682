package contact

import (
	"strings"
	"time"
)

const (
	MaxNameLength  = 100
	MaxEmailLength = 120
	MaxPhoneLength = 50

	DefaultPerPage = 20
	MaxPerPage     = 100
)

type Submission struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone"`
	Message        string    `json:"message"`
	SubmissionDate time.Time `json:"submission_date"`
}

func New(name, email string, phone *string, message string) Submission {
	s := Submission{
		Name:           strings.TrimSpace(name),
		Email:          strings.TrimSpace(email),
		Message:        strings.TrimSpace(message),
		SubmissionDate: time.Now().UTC(),
	}
	if phone != nil {
		if p := strings.TrimSpace(*phone); p != "" {
			s.Phone = &p
		}
	}
	return s
}

// Page is one slice of the submission log, newest first.
type Page struct {
	Submissions []Submission `json:"submissions"`
	Total       int64        `json:"total"`
	Pages       int64        `json:"pages"`
	CurrentPage int          `json:"current_page"`
}

// NewPage derives the page count for total rows split into perPage chunks.
func NewPage(subs []Submission, total int64, page, perPage int) Page {
	if subs == nil {
		subs = []Submission{}
	}
	var pages int64
	if perPage > 0 {
		pages = (total + int64(perPage) - 1) / int64(perPage)
	}
	return Page{Submissions: subs, Total: total, Pages: pages, CurrentPage: page}
}
