// Package customer holds the guest contact and delivery details collected at
// checkout, and the rules they must satisfy before an order is submitted.
package customer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Data is the guest checkout form. All fields are free text; Email is optional.
type Data struct {
	FirstName     string `json:"firstName" validate:"trimmed_min=2"`
	LastName      string `json:"lastName" validate:"trimmed_min=2"`
	Phone         string `json:"phone" validate:"shop_phone"`
	Email         string `json:"email" validate:"shop_email"`
	StreetAddress string `json:"streetAddress" validate:"trimmed_min=5"`
	City          string `json:"city" validate:"trimmed_min=2"`
	State         string `json:"state" validate:"trimmed_min=2"`
	Postcode      string `json:"postcode" validate:"trimmed_min=3"`
}

// Empty returns the zero form shown when checkout starts.
func Empty() Data {
	return Data{}
}

// Sanitize trims every field and removes all whitespace from the phone number.
// It must run before Validate and before the data is persisted.
func Sanitize(d Data) Data {
	return Data{
		FirstName:     strings.TrimSpace(d.FirstName),
		LastName:      strings.TrimSpace(d.LastName),
		Phone:         StripSpaces(d.Phone),
		Email:         strings.TrimSpace(d.Email),
		StreetAddress: strings.TrimSpace(d.StreetAddress),
		City:          strings.TrimSpace(d.City),
		State:         strings.TrimSpace(d.State),
		Postcode:      strings.TrimSpace(d.Postcode),
	}
}

// FullName joins first and last name for display.
func (d Data) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// StripSpaces removes every whitespace rune from s.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

var (
	egyptianMobile = regexp.MustCompile(`^(\+?2)?01[0-9]{9}$`)
	international  = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	nonPhoneChars  = regexp.MustCompile(`[^\d+]`)
	egyptianPrefix = regexp.MustCompile(`^\+?2?`)
)

// ValidPhone reports whether phone, once whitespace is stripped, is an
// Egyptian mobile number or an E.164-like international number.
func ValidPhone(phone string) bool {
	p := StripSpaces(phone)
	return egyptianMobile.MatchString(p) || international.MatchString(p)
}

// FormatPhone renders Egyptian mobile numbers as "+2 010 123 45678"; any
// other number is returned with non-digit characters (except '+') removed.
func FormatPhone(phone string) string {
	cleaned := nonPhoneChars.ReplaceAllString(phone, "")
	if !egyptianMobile.MatchString(cleaned) {
		return cleaned
	}
	digits := egyptianPrefix.ReplaceAllString(cleaned, "")
	return fmt.Sprintf("+2 %s %s %s", digits[:3], digits[3:6], digits[6:])
}
