package application

import (
	"fmt"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// CheckEligibility decides whether an application with the given answers may
// be submitted to the posting at the given time. It is a pure function; the
// duplicate-application check happens against storage and its final authority
// is the unique index on (internship_id, student_id).
//
// Checks run in a fixed order and the first failure wins:
//
//  1. the posting must be active and approved,
//  2. the deadline must not have passed (applying at the exact deadline
//     instant fails),
//  3. every required question must have a non-empty answer. Required file
//     questions are exempt: the upload service attaches files after
//     submission, so the core cannot see them yet.
func CheckEligibility(in *internship.Internship, answers []Answer, now time.Time) error {
	if !in.IsAvailable() {
		return shared.ErrInternshipUnavailable
	}

	if in.DeadlinePassed(now) {
		return shared.ErrDeadlinePassed
	}

	byQuestion := make(map[string]Answer, len(answers))
	for _, ans := range answers {
		byQuestion[ans.QuestionID] = ans
	}

	for _, q := range in.RequiredQuestions() {
		if q.QuestionType == internship.QuestionFile {
			continue
		}
		ans, ok := byQuestion[q.QuestionID]
		if !ok || ans.IsEmpty() {
			return shared.WrapError("application", "CheckEligibility", shared.ErrValidation,
				fmt.Sprintf("required question %q has no answer", q.QuestionID),
				shared.ErrMissingRequiredAnswer)
		}
	}

	return nil
}
