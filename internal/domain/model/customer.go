package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// Customer is a pawnshop customer as returned by the customer directory.
// The ten-digit phone number is the primary key. A customer is immutable
// within one wizard session once selected; selecting again replaces it.
type Customer struct {
	PhoneNumber string `json:"phoneNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Status      string `json:"status"`
}

// Validate checks the directory contract the wizard depends on.
func (c Customer) Validate() error {
	if !phonePattern.MatchString(c.PhoneNumber) {
		return fmt.Errorf("customer phone number must be exactly 10 digits, got %q", c.PhoneNumber)
	}
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" {
		return errors.New("customer name is required")
	}
	return nil
}

// FullName renders the display name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ItemDraft is one collateral item being described during origination.
// Blank-description entries are list placeholders and are never committed.
type ItemDraft struct {
	Description  string `json:"description"`
	SerialNumber string `json:"serialNumber,omitempty"`
}

// HasDescription reports whether the entry counts as a real item.
func (i ItemDraft) HasDescription() bool {
	return strings.TrimSpace(i.Description) != ""
}

// EligibilitySnapshot is a point-in-time eligibility determination for the
// selected customer and requested amount. A newer snapshot supersedes an
// older one wholesale; snapshots are never merged.
type EligibilitySnapshot struct {
	Eligible        bool     `json:"eligible"`
	Reasons         []string `json:"reasons"`
	CreditLimit     int64    `json:"creditLimit"`
	CreditUsed      int64    `json:"creditUsed"`
	AvailableCredit int64    `json:"availableCredit"`
	MaxLoans        int      `json:"maxLoans"`
	ActiveLoans     int      `json:"activeLoans"`
	SlotsAvailable  int      `json:"slotsAvailable"`
}
