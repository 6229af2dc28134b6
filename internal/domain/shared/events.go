// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Application events
	EventApplicationCreated       EventType = "application.created"
	EventApplicationStatusChanged EventType = "application.status_changed"
	EventApplicationWithdrawn     EventType = "application.withdrawn"

	// Internship events
	EventInternshipReviewed EventType = "internship.reviewed"

	// Company events
	EventCompanyVerified EventType = "company.verified"

	// Notification events
	EventNotificationCreated EventType = "notification.created"
	EventNotificationFailed  EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Application Events
// ═══════════════════════════════════════════════════════════════════════════

// ApplicationCreatedEvent is emitted when a student submits a new application.
type ApplicationCreatedEvent struct {
	BaseEvent
	ApplicationID string `json:"application_id"`
	InternshipID  string `json:"internship_id"`
	StudentID     string `json:"student_id"`
}

// Payload implements Event interface.
func (e ApplicationCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"application_id": e.ApplicationID,
		"internship_id":  e.InternshipID,
		"student_id":     e.StudentID,
	}
}

// NewApplicationCreatedEvent creates a new ApplicationCreatedEvent.
func NewApplicationCreatedEvent(applicationID, internshipID, studentID string) ApplicationCreatedEvent {
	return ApplicationCreatedEvent{
		BaseEvent:     NewBaseEvent(EventApplicationCreated, applicationID),
		ApplicationID: applicationID,
		InternshipID:  internshipID,
		StudentID:     studentID,
	}
}

// ApplicationStatusChangedEvent is emitted on every successful status transition.
// Statuses are carried as strings so the event stays serializable without
// importing the application package.
type ApplicationStatusChangedEvent struct {
	BaseEvent
	ApplicationID string `json:"application_id"`
	InternshipID  string `json:"internship_id"`
	StudentID     string `json:"student_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	Notes         string `json:"notes,omitempty"`
	ChangedBy     string `json:"changed_by"`
	ChangedByType string `json:"changed_by_type"`
}

// Payload implements Event interface.
func (e ApplicationStatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"application_id":  e.ApplicationID,
		"internship_id":   e.InternshipID,
		"student_id":      e.StudentID,
		"old_status":      e.OldStatus,
		"new_status":      e.NewStatus,
		"notes":           e.Notes,
		"changed_by":      e.ChangedBy,
		"changed_by_type": e.ChangedByType,
	}
}

// NewApplicationStatusChangedEvent creates a new ApplicationStatusChangedEvent.
func NewApplicationStatusChangedEvent(applicationID, internshipID, studentID, oldStatus, newStatus, notes, changedBy, changedByType string) ApplicationStatusChangedEvent {
	return ApplicationStatusChangedEvent{
		BaseEvent:     NewBaseEvent(EventApplicationStatusChanged, applicationID),
		ApplicationID: applicationID,
		InternshipID:  internshipID,
		StudentID:     studentID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		Notes:         notes,
		ChangedBy:     changedBy,
		ChangedByType: changedByType,
	}
}

// ApplicationWithdrawnEvent is emitted when a student withdraws an application.
type ApplicationWithdrawnEvent struct {
	BaseEvent
	ApplicationID string `json:"application_id"`
	InternshipID  string `json:"internship_id"`
	StudentID     string `json:"student_id"`
	Reason        string `json:"reason,omitempty"`
}

// Payload implements Event interface.
func (e ApplicationWithdrawnEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"application_id": e.ApplicationID,
		"internship_id":  e.InternshipID,
		"student_id":     e.StudentID,
		"reason":         e.Reason,
	}
}

// NewApplicationWithdrawnEvent creates a new ApplicationWithdrawnEvent.
func NewApplicationWithdrawnEvent(applicationID, internshipID, studentID, reason string) ApplicationWithdrawnEvent {
	return ApplicationWithdrawnEvent{
		BaseEvent:     NewBaseEvent(EventApplicationWithdrawn, applicationID),
		ApplicationID: applicationID,
		InternshipID:  internshipID,
		StudentID:     studentID,
		Reason:        reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Internship Events
// ═══════════════════════════════════════════════════════════════════════════

// InternshipReviewedEvent is emitted after an admin approves or rejects an
// internship posting. Approved postings additionally trigger the skill-match
// fan-out downstream.
type InternshipReviewedEvent struct {
	BaseEvent
	InternshipID string `json:"internship_id"`
	CompanyID    string `json:"company_id"`
	CreatedBy    string `json:"created_by"` // user who posted the internship
	Title        string `json:"title"`
	Approved     bool   `json:"approved"`
	Reason       string `json:"reason,omitempty"`
	ReviewedBy   string `json:"reviewed_by"`
}

// Payload implements Event interface.
func (e InternshipReviewedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"internship_id": e.InternshipID,
		"company_id":    e.CompanyID,
		"created_by":    e.CreatedBy,
		"title":         e.Title,
		"approved":      e.Approved,
		"reason":        e.Reason,
		"reviewed_by":   e.ReviewedBy,
	}
}

// NewInternshipReviewedEvent creates a new InternshipReviewedEvent.
func NewInternshipReviewedEvent(internshipID, companyID, createdBy, title string, approved bool, reason, reviewedBy string) InternshipReviewedEvent {
	return InternshipReviewedEvent{
		BaseEvent:    NewBaseEvent(EventInternshipReviewed, internshipID),
		InternshipID: internshipID,
		CompanyID:    companyID,
		CreatedBy:    createdBy,
		Title:        title,
		Approved:     approved,
		Reason:       reason,
		ReviewedBy:   reviewedBy,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Company Events
// ═══════════════════════════════════════════════════════════════════════════

// CompanyVerifiedEvent is emitted after an admin verifies or rejects a company.
type CompanyVerifiedEvent struct {
	BaseEvent
	CompanyID  string `json:"company_id"`
	UserID     string `json:"user_id"` // account that owns the company profile
	Name       string `json:"name"`
	Verified   bool   `json:"verified"`
	Reason     string `json:"reason,omitempty"`
	VerifiedBy string `json:"verified_by"`
}

// Payload implements Event interface.
func (e CompanyVerifiedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"company_id":  e.CompanyID,
		"user_id":     e.UserID,
		"name":        e.Name,
		"verified":    e.Verified,
		"reason":      e.Reason,
		"verified_by": e.VerifiedBy,
	}
}

// NewCompanyVerifiedEvent creates a new CompanyVerifiedEvent.
func NewCompanyVerifiedEvent(companyID, userID, name string, verified bool, reason, verifiedBy string) CompanyVerifiedEvent {
	return CompanyVerifiedEvent{
		BaseEvent:  NewBaseEvent(EventCompanyVerified, companyID),
		CompanyID:  companyID,
		UserID:     userID,
		Name:       name,
		Verified:   verified,
		Reason:     reason,
		VerifiedBy: verifiedBy,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
