package adapter

import "context"

// ContactStatus is the tri-state answer of the mailing-list service for one
// email: the contact's email status, whether it is on the target list, and
// the status of that membership. A contact unknown to the service comes back
// as the zero value.
type ContactStatus struct {
	EmailStatus string // active | invited | new | unsubscribed | blocked | inactive | ""
	InList      bool
	ListStatus  string // active | unsubscribed | ... | ""
}

// Confirmed reports whether the contact counts as a confirmed subscriber:
// active email, present on the list, and the list membership itself active.
func (s ContactStatus) Confirmed() bool {
	return s.EmailStatus == "active" && s.InList && s.ListStatus == "active"
}

// SubscriptionVerifier checks an email against the external mailing list.
// A missing contact degrades to a zero ContactStatus; a service or transport
// failure surfaces as domain.ErrVerifierUnavailable.
type SubscriptionVerifier interface {
	CheckConfirmed(ctx context.Context, email string) (ContactStatus, error)
}
