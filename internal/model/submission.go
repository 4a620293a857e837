package model

import "time"

// SubmissionType identifies which public form produced a submission.
type SubmissionType string

const (
	SubmissionContact   SubmissionType = "contact"
	SubmissionFranchise SubmissionType = "franchise"
	SubmissionEnquiry   SubmissionType = "enquiry"
)

// Valid reports whether t is one of the known submission types.
func (t SubmissionType) Valid() bool {
	switch t {
	case SubmissionContact, SubmissionFranchise, SubmissionEnquiry:
		return true
	}
	return false
}

// Submission is the durable record of a form entry.
type Submission struct {
	ID         string         `json:"submissionId" bson:"submissionId"`
	Type       SubmissionType `json:"type" bson:"type"`
	Name       string         `json:"name" bson:"name"`
	Email      string         `json:"email" bson:"email"`
	Phone      string         `json:"phone" bson:"phone"`
	Message    string         `json:"message,omitempty" bson:"message,omitempty"`
	Subject    string         `json:"subject,omitempty" bson:"subject,omitempty"`
	Address    string         `json:"address,omitempty" bson:"address,omitempty"`
	Location   string         `json:"location,omitempty" bson:"location,omitempty"`
	EmailSent  bool           `json:"emailSent" bson:"emailSent"`
	EmailError string         `json:"emailError,omitempty" bson:"emailError,omitempty"`
	RetryCount int            `json:"retryCount" bson:"retryCount"`
	CreatedAt  time.Time      `json:"createdAt" bson:"createdAt"`
	SentAt     *time.Time     `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
}

// SubmissionListOptions filters admin listings. An empty Type returns every type.
type SubmissionListOptions struct {
	Type       SubmissionType
	FailedOnly bool
}

// Session is the transient in-memory view of a submission that is still
// waiting on (or has just finished) its email notification.
type Session struct {
	ID         string
	Type       SubmissionType
	CreatedAt  time.Time
	EmailSent  bool
	RetryCount int
	Failed     bool
}

// Status is the client-facing notification state. A failed notification is
// still reported as pending; failures surface through the admin listing.
func (s Session) Status() string {
	if s.EmailSent {
		return "sent"
	}
	return "pending"
}
