package models

import "time"

// ClassType enumerates the supported training session kinds. Fixed at
// creation time.
type ClassType string

const (
	ClassTypePortfolio ClassType = "PORTFOLIO"
	ClassTypeExternal  ClassType = "EXTERNAL"
	ClassTypeDDS       ClassType = "DDS"
	ClassTypeOthers    ClassType = "OTHERS"
)

// Valid returns true when the type is a supported value.
func (t ClassType) Valid() bool {
	switch t {
	case ClassTypePortfolio, ClassTypeExternal, ClassTypeDDS, ClassTypeOthers:
		return true
	default:
		return false
	}
}

// Label returns the display form rendered to API consumers. The enum value
// itself is preserved separately for round-trip editing.
func (t ClassType) Label() string {
	switch t {
	case ClassTypePortfolio:
		return "Portfólio"
	case ClassTypeExternal:
		return "Externo"
	case ClassTypeDDS:
		return "DDS"
	case ClassTypeOthers:
		return "Outros"
	default:
		return string(t)
	}
}

// DefaultCode returns the short code derived for non-portfolio types.
// Portfolio classes copy the code from the training catalog instead.
func (t ClassType) DefaultCode() string {
	switch t {
	case ClassTypeExternal:
		return "EXT"
	case ClassTypeDDS:
		return "DDS"
	case ClassTypeOthers:
		return "OUTROS"
	default:
		return ""
	}
}

// ClassStatus represents the lifecycle state of a session.
// Completed and cancelled are terminal.
type ClassStatus string

const (
	ClassStatusScheduled ClassStatus = "scheduled"
	ClassStatusCompleted ClassStatus = "completed"
	ClassStatusCancelled ClassStatus = "cancelled"
)

// Final returns true for terminal states.
func (s ClassStatus) Final() bool {
	return s == ClassStatusCompleted || s == ClassStatusCancelled
}

// Class represents a scheduled training session.
type Class struct {
	ID             string      `db:"id" json:"id"`
	Type           ClassType   `db:"type" json:"type"`
	Name           string      `db:"name" json:"name"`
	Code           string      `db:"code" json:"code"`
	Duration       *string     `db:"duration" json:"duration,omitempty"`
	Provider       *string     `db:"provider" json:"provider,omitempty"`
	Content        *string     `db:"content" json:"content,omitempty"`
	Classification *string     `db:"classification" json:"classification,omitempty"`
	Objective      *string     `db:"objective" json:"objective,omitempty"`
	Unit           string      `db:"unit" json:"unit"`
	InstructorID   string      `db:"instructor_id" json:"instructor_id"`
	DateStart      time.Time   `db:"date_start" json:"date_start"`
	DateEnd        *time.Time  `db:"date_end" json:"date_end,omitempty"`
	PresentsCount  int         `db:"presents_count" json:"presents_count"`
	Status         ClassStatus `db:"status" json:"status"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with the embedded instructor, roster and display
// metadata returned by the API.
type ClassDetail struct {
	Class
	TypeLabel  string      `json:"type_label"`
	Instructor *Instructor `json:"instructor,omitempty"`
	Attendees  []Attendee  `json:"attendees,omitempty"`
}

// NewClassDetail decorates a class with its display label.
func NewClassDetail(class Class, instructor *Instructor, attendees []Attendee) *ClassDetail {
	return &ClassDetail{
		Class:      class,
		TypeLabel:  class.Type.Label(),
		Instructor: instructor,
		Attendees:  attendees,
	}
}

// ClassPatch is a partial edit merged against the stored row inside the
// update transaction, so concurrent patches on the same class never clobber
// each other. Nil fields leave the column untouched; the class type is
// immutable.
type ClassPatch struct {
	Name           *string
	Duration       *string
	Provider       *string
	Content        *string
	Classification *string
	Objective      *string
	Unit           *string
	InstructorID   *string
	DateStart      *time.Time
}

// Apply merges the patch into the class record.
func (p ClassPatch) Apply(class *Class) {
	if p.Name != nil {
		class.Name = *p.Name
	}
	if p.Duration != nil {
		class.Duration = p.Duration
	}
	if p.Provider != nil {
		class.Provider = p.Provider
	}
	if p.Content != nil {
		class.Content = p.Content
	}
	if p.Classification != nil {
		class.Classification = p.Classification
	}
	if p.Objective != nil {
		class.Objective = p.Objective
	}
	if p.Unit != nil {
		class.Unit = *p.Unit
	}
	if p.InstructorID != nil {
		class.InstructorID = *p.InstructorID
	}
	if p.DateStart != nil {
		class.DateStart = p.DateStart.UTC()
	}
}

// ClassFilter narrows class listings. Zero values impose no constraint.
// Handlers normalize delimited query parameters into these sets before the
// filter reaches the repository.
type ClassFilter struct {
	Search   string
	Types    []ClassType
	Units    []string
	Page     int
	PageSize int
}

// Attendee is an employee checked into a class session. Owned exclusively by
// its class; removal erases the check-in while early leave preserves it.
type Attendee struct {
	ID           string     `db:"id" json:"id"`
	ClassID      string     `db:"class_id" json:"class_id"`
	Registration string     `db:"registration" json:"registration"`
	Name         string     `db:"name" json:"name"`
	Unit         string     `db:"unit" json:"unit"`
	CheckedInAt  time.Time  `db:"checked_in_at" json:"checked_in_at"`
	LeftEarlyAt  *time.Time `db:"left_early_at" json:"left_early_at,omitempty"`
}

// InviteToken is a time-limited credential granting unauthenticated self
// check-in to one class. At most one live token exists per class.
type InviteToken struct {
	ClassID   string    `db:"class_id" json:"class_id"`
	Token     string    `db:"token" json:"token"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is past its validity window.
func (t *InviteToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
