// Package application contains the internship application aggregate: the
// status state machine, the append-only audit trail, and the eligibility
// rules. This is the core of the marketplace and has no infrastructure
// dependencies.
package application

// Status is the lifecycle state of an application. The string values are
// stored and displayed as-is.
type Status string

const (
	// StatusApplied - initial state of every application.
	StatusApplied Status = "Applied"
	// StatusUnderReview - the company is reviewing the application.
	StatusUnderReview Status = "Under Review"
	// StatusShortlisted - the applicant made the shortlist.
	StatusShortlisted Status = "Shortlisted"
	// StatusInterviewScheduled - an interview has been scheduled.
	StatusInterviewScheduled Status = "Interview Scheduled"
	// StatusRejected - terminal: the company declined the applicant.
	StatusRejected Status = "Rejected"
	// StatusOfferExtended - the company made an offer.
	StatusOfferExtended Status = "Offer Extended"
	// StatusAccepted - terminal: the applicant accepted the offer.
	StatusAccepted Status = "Accepted"
	// StatusWithdrawn - terminal: the applicant withdrew.
	StatusWithdrawn Status = "Withdrawn"
)

// AllStatuses lists every status, in lifecycle order.
var AllStatuses = []Status{
	StatusApplied,
	StatusUnderReview,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusRejected,
	StatusOfferExtended,
	StatusAccepted,
	StatusWithdrawn,
}

// IsValid checks that the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusApplied, StatusUnderReview, StatusShortlisted, StatusInterviewScheduled,
		StatusRejected, StatusOfferExtended, StatusAccepted, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the lifecycle. No transition
// may originate from a terminal status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusAccepted, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Status) String() string { return string(s) }
