package model

import "time"

// OfferState はオファーの状態。
type OfferState string

const (
	// OfferStateDraft は下書き。
	OfferStateDraft OfferState = "draft"
	// OfferStateSent は送付済み。
	OfferStateSent OfferState = "sent"
	// OfferStateAccepted は受注済み。
	OfferStateAccepted OfferState = "accepted"
	// OfferStateRejected は失注。
	OfferStateRejected OfferState = "rejected"
)

// ValidOfferState はoffer stateとして受け付け可能な値かを返す。
func ValidOfferState(s OfferState) bool {
	switch s {
	case OfferStateDraft, OfferStateSent, OfferStateAccepted, OfferStateRejected:
		return true
	}
	return false
}

// Offer は取引先向けのオファーを表す。
type Offer struct {
	ID          string
	ClientID    string
	Title       string
	Description string
	Price       float64
	State       OfferState
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
