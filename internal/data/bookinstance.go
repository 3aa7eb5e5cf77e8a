package data

import (
	"net/url"
	"time"

	"github.com/aoideee/locallibrary/internal/validator"
)

// Status is the circulation state of a book instance.
type Status string

const (
	StatusAvailable   Status = "Available"
	StatusMaintenance Status = "Maintenance"
	StatusLoaned      Status = "Loaned"
	StatusReserved    Status = "Reserved"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved}

// DefaultStatus is assigned when the form leaves the status empty.
const DefaultStatus = StatusMaintenance

// IsValidStatus reports whether s names one of the Statuses.
func IsValidStatus(s string) bool {
	for _, status := range Statuses {
		if string(status) == s {
			return true
		}
	}
	return false
}

// BookInstance is a physical copy of a book that can be lent out.
type BookInstance struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Imprint   string    `json:"imprint"`
	Status    Status    `json:"status"`
	DueBack   time.Time `json:"due_back"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Book *Book `json:"book,omitempty"`
}

// URL is the canonical path of the instance's detail page.
func (bi *BookInstance) URL() string {
	return "/catalog/bookinstance/" + bi.ID
}

// DueBackFormatted renders the due date for display, e.g. "Oct 19, 2026".
func (bi *BookInstance) DueBackFormatted() string {
	return formatDate(&bi.DueBack, displayDate)
}

// DueBackYYYYMMDD renders the due date for a date input.
func (bi *BookInstance) DueBackYYYYMMDD() string {
	return formatDate(&bi.DueBack, formDate)
}

// BookInstanceInput holds the values submitted through the instance form.
type BookInstanceInput struct {
	Book    string
	Imprint string
	Status  string
	DueBack string

	dueBack *time.Time
}

// NewBookInstanceInput trims and escapes the instance form fields.
func NewBookInstanceInput(form url.Values) *BookInstanceInput {
	return &BookInstanceInput{
		Book:    validator.Clean(form.Get("book")),
		Imprint: validator.Clean(form.Get("imprint")),
		Status:  validator.Clean(form.Get("status")),
		DueBack: validator.Trim(form.Get("due_back")),
	}
}

// ValidateBookInstance checks the instance form, parses the due date and
// fills in the default status.
func ValidateBookInstance(v *validator.Validator, in *BookInstanceInput) {
	v.Check(validator.NotBlank(in.Book), "book", "Book must be specified")
	v.Check(validator.NotBlank(in.Imprint), "imprint", "Imprint must be specified")

	if in.Status == "" {
		in.Status = string(DefaultStatus)
	}
	v.Check(IsValidStatus(in.Status), "status", "Invalid status")

	var ok bool
	in.dueBack, ok = validator.ParseDate(in.DueBack)
	v.Check(ok, "due_back", "Invalid date")
}

// Apply copies the validated input onto bi. An empty due date means now.
func (in *BookInstanceInput) Apply(bi *BookInstance, now time.Time) {
	bi.BookID = in.Book
	bi.Imprint = in.Imprint
	bi.Status = Status(in.Status)
	if in.dueBack != nil {
		bi.DueBack = *in.dueBack
	} else {
		bi.DueBack = now.UTC()
	}
	bi.Book = nil
}

// BookInstanceInputFrom pre-fills the form from a stored instance.
func BookInstanceInputFrom(bi *BookInstance) *BookInstanceInput {
	due := bi.DueBack
	return &BookInstanceInput{
		Book:    bi.BookID,
		Imprint: bi.Imprint,
		Status:  string(bi.Status),
		DueBack: bi.DueBackYYYYMMDD(),
		dueBack: &due,
	}
}
