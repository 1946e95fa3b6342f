// internal/models/user.go
package models

// User is the minimal contact record the notification component needs to
// reach an applicant or reviewer. Account management lives elsewhere.
type User struct {
	ID        string        `json:"id"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	Role      RecipientRole `json:"role"`
}
