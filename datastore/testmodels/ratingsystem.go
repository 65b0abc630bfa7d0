// Package testmodels holds sample entities shared by the datastore tests.
package testmodels

import (
	"fmt"

	"github.com/go-openapi/strfmt"
)

// RatingSystem is a club's player ranking scheme.
type RatingSystem struct {
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"CreatedAt"`

	// Required: true
	Description *string `json:"Description"`

	// Required: true
	ID *string `json:"Id"`

	// Required: true
	Name *string `json:"Name"`

	SiteURL string `json:"SiteUrl,omitempty"`

	// Required: true
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"UpdatedAt"`
}

// Player is a rated club member.
type Player struct {
	ID       string          `json:"id"`
	ClubID   string          `json:"clubId"`
	Email    strfmt.Email    `json:"email"`
	Rating   int             `json:"rating"`
	JoinedAt strfmt.DateTime `json:"joinedAt"`
}

// Validate checks the formatted fields against the strfmt registry.
func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if !strfmt.Default.Validates("email", p.Email.String()) {
		return fmt.Errorf("player %s: invalid email %q", p.ID, p.Email)
	}
	return nil
}
