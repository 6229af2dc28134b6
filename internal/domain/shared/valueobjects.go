// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func isUUID(s string) bool {
	return uuidRegex.MatchString(s)
}

// ApplicationID represents a unique application identifier (UUID format).
type ApplicationID string

// IsValid checks if the application ID is a valid UUID.
func (a ApplicationID) IsValid() bool { return isUUID(string(a)) }

// String returns the string representation.
func (a ApplicationID) String() string { return string(a) }

// IsEmpty checks if the ID is empty.
func (a ApplicationID) IsEmpty() bool { return a == "" }

// NewApplicationID creates a new ApplicationID with validation.
func NewApplicationID(id string) (ApplicationID, error) {
	aid := ApplicationID(strings.ToLower(strings.TrimSpace(id)))
	if !aid.IsValid() {
		return "", NewDomainError("shared", "NewApplicationID", ErrInvalidID, "invalid application ID format")
	}
	return aid, nil
}

// InternshipID represents a unique internship identifier (UUID format).
type InternshipID string

// IsValid checks if the internship ID is a valid UUID.
func (i InternshipID) IsValid() bool { return isUUID(string(i)) }

// String returns the string representation.
func (i InternshipID) String() string { return string(i) }

// IsEmpty checks if the ID is empty.
func (i InternshipID) IsEmpty() bool { return i == "" }

// NewInternshipID creates a new InternshipID with validation.
func NewInternshipID(id string) (InternshipID, error) {
	iid := InternshipID(strings.ToLower(strings.TrimSpace(id)))
	if !iid.IsValid() {
		return "", NewDomainError("shared", "NewInternshipID", ErrInvalidID, "invalid internship ID format")
	}
	return iid, nil
}

// StudentID represents a unique student profile identifier (UUID format).
type StudentID string

// IsValid checks if the student ID is a valid UUID.
func (s StudentID) IsValid() bool { return isUUID(string(s)) }

// String returns the string representation.
func (s StudentID) String() string { return string(s) }

// IsEmpty checks if the ID is empty.
func (s StudentID) IsEmpty() bool { return s == "" }

// NewStudentID creates a new StudentID with validation.
func NewStudentID(id string) (StudentID, error) {
	sid := StudentID(strings.ToLower(strings.TrimSpace(id)))
	if !sid.IsValid() {
		return "", NewDomainError("shared", "NewStudentID", ErrInvalidID, "invalid student ID format")
	}
	return sid, nil
}

// CompanyID represents a unique company profile identifier (UUID format).
type CompanyID string

// IsValid checks if the company ID is a valid UUID.
func (c CompanyID) IsValid() bool { return isUUID(string(c)) }

// String returns the string representation.
func (c CompanyID) String() string { return string(c) }

// IsEmpty checks if the ID is empty.
func (c CompanyID) IsEmpty() bool { return c == "" }

// NewCompanyID creates a new CompanyID with validation.
func NewCompanyID(id string) (CompanyID, error) {
	cid := CompanyID(strings.ToLower(strings.TrimSpace(id)))
	if !cid.IsValid() {
		return "", NewDomainError("shared", "NewCompanyID", ErrInvalidID, "invalid company ID format")
	}
	return cid, nil
}

// UserID represents the account identifier behind a student or company
// profile. Authentication and account management live outside this service,
// so the ID is validated for shape only.
type UserID string

// IsValid checks if the user ID is a valid UUID.
func (u UserID) IsValid() bool { return isUUID(string(u)) }

// String returns the string representation.
func (u UserID) String() string { return string(u) }

// IsEmpty checks if the ID is empty.
func (u UserID) IsEmpty() bool { return u == "" }

// NewUserID creates a new UserID with validation.
func NewUserID(id string) (UserID, error) {
	uid := UserID(strings.ToLower(strings.TrimSpace(id)))
	if !uid.IsValid() {
		return "", NewDomainError("shared", "NewUserID", ErrInvalidID, "invalid user ID format")
	}
	return uid, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Actor Value Object
// ═══════════════════════════════════════════════════════════════════════════

// ActorType identifies who performed an action on an application.
type ActorType string

const (
	ActorSystem  ActorType = "System"
	ActorStudent ActorType = "Student"
	ActorCompany ActorType = "Company"
	ActorAdmin   ActorType = "Admin"
)

// IsValid checks if the actor type is one of the known values.
func (a ActorType) IsValid() bool {
	switch a {
	case ActorSystem, ActorStudent, ActorCompany, ActorAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (a ActorType) String() string { return string(a) }

// Actor couples an acting user with their role for audit purposes.
type Actor struct {
	UserID UserID
	Type   ActorType
}

// SystemActor returns the actor used for automated transitions.
func SystemActor() Actor {
	return Actor{Type: ActorSystem}
}

// IsValid checks that the actor has a valid type and, unless it is the
// system, a user behind it.
func (a Actor) IsValid() bool {
	if !a.Type.IsValid() {
		return false
	}
	if a.Type == ActorSystem {
		return true
	}
	return a.UserID.IsValid()
}

// ═══════════════════════════════════════════════════════════════════════════
// Skill Value Object
// ═══════════════════════════════════════════════════════════════════════════

// SkillSet is an unordered collection of skill names. Matching is exact and
// case-sensitive: "Go" and "go" are distinct skills.
type SkillSet []string

// Contains reports whether the set holds the exact skill name.
func (s SkillSet) Contains(skill string) bool {
	for _, v := range s {
		if v == skill {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one skill.
func (s SkillSet) Intersects(other SkillSet) bool {
	if len(s) == 0 || len(other) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(s))
	for _, v := range s {
		seen[v] = struct{}{}
	}
	for _, v := range other {
		if _, ok := seen[v]; ok {
			return true
		}
	}
	return false
}

// Intersection returns the skills present in both sets, preserving the order
// of the receiver.
func (s SkillSet) Intersection(other SkillSet) SkillSet {
	if len(s) == 0 || len(other) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(other))
	for _, v := range other {
		seen[v] = struct{}{}
	}
	var out SkillSet
	for _, v := range s {
		if _, ok := seen[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// TotalPages computes the page count for a result set of the given size.
func (p Pagination) TotalPages(total int) int {
	limit := p.Limit()
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
