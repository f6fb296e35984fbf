package model

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaim is the payload of a session token.
type TokenClaim struct {
	UserId uint `json:"id"`
	jwt.RegisteredClaims
}

// ValidateTicketInput accepts ticketId either as a JSON string (bare id or the
// text decoded from a QR code) or as an embedded object.
type ValidateTicketInput struct {
	TicketId json.RawMessage `json:"ticketId"`
}

// BulkGenerateInput maps zone code to the number of tickets to mint.
type BulkGenerateInput map[string]int
