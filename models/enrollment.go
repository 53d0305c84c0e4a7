// ABOUTME: Enrollment and payment models
// ABOUTME: Links a student to a course with progress and payment details

package models

import (
	"encoding/json"
	"strings"
)

const (
	EnrollmentNotStarted = "Not Started"
	EnrollmentInProgress = "In Progress"
	EnrollmentCompleted  = "Completed"
)

// EnrollmentStatuses lists the filterable statuses in display order
var EnrollmentStatuses = []string{EnrollmentNotStarted, EnrollmentInProgress, EnrollmentCompleted}

// Ref is a populated reference to another entity. The backend sends either
// the bare id or an object with a display name.
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] != '{' {
		var id flexID
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		r.ID = string(id)
		return nil
	}
	type Alias Ref
	aux := struct {
		*Alias
		MongoID flexID `json:"_id"`
		ID      flexID `json:"id"`
	}{Alias: (*Alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ID = pickID(aux.MongoID, aux.ID)
	return nil
}

// Label returns the display name, falling back to the id.
func (r Ref) Label() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Title != "":
		return r.Title
	default:
		return r.ID
	}
}

type Enrollment struct {
	ID        string `json:"id"`
	Student   Ref    `json:"student"`
	Course    Ref    `json:"course"`
	CreatedAt string `json:"createdAt,omitempty"`
	Progress  int    `json:"progress"`
	Status    string `json:"status"`
}

func (e *Enrollment) UnmarshalJSON(data []byte) error {
	type Alias Enrollment
	aux := struct {
		*Alias
		MongoID flexID `json:"_id"`
		ID      flexID `json:"id"`
	}{Alias: (*Alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.ID = pickID(aux.MongoID, aux.ID)
	if e.Progress < 0 {
		e.Progress = 0
	}
	if e.Progress > 100 {
		e.Progress = 100
	}
	if e.Status == "" {
		e.Status = statusForProgress(e.Progress)
	}
	return nil
}

func statusForProgress(progress int) string {
	switch {
	case progress >= 100:
		return EnrollmentCompleted
	case progress > 0:
		return EnrollmentInProgress
	default:
		return EnrollmentNotStarted
	}
}

// EnrollmentInput is the body of POST /enrollments
type EnrollmentInput struct {
	StudentID string `json:"studentId"`
	CourseID  string `json:"courseId"`
}

// EnrollmentCheck is returned by GET /enrollments/check
type EnrollmentCheck struct {
	IsEnrolled bool `json:"isEnrolled"`
}

// PaymentRequest is the body of POST /enrollments/{id}/payment
type PaymentRequest struct {
	CardNumber     string `json:"cardNumber"`
	CardHolderName string `json:"cardHolderName"`
	ExpiryDate     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
	PaymentMethod  string `json:"paymentMethod"`
}

// NewCardPayment builds a card payment with whitespace stripped from the number.
func NewCardPayment(form PaymentForm) PaymentRequest {
	return PaymentRequest{
		CardNumber:     strings.Join(strings.Fields(form.CardNumber), ""),
		CardHolderName: strings.TrimSpace(form.CardHolderName),
		ExpiryDate:     strings.TrimSpace(form.ExpiryDate),
		CVV:            strings.TrimSpace(form.CVV),
		PaymentMethod:  "card",
	}
}
