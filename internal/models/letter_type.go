package models

import (
	"fmt"
	"strings"
)

// LetterType identifies the kind of letter requested.
type LetterType string

const (
	LetterTypeNOC                      LetterType = "noc"
	LetterTypeVisaLetter               LetterType = "visa_letter"
	LetterTypeOfferLetter              LetterType = "offer_letter"
	LetterTypeInternshipCompletion     LetterType = "internship_completion"
	LetterTypeCertificateReimbursement LetterType = "certificate_reimbursement"
	LetterTypeHRAddressProof           LetterType = "hr_address_proof"
	LetterTypeRelievingLetter          LetterType = "relieving_letter"
)

// LetterTypeInfo pairs a code with its display label.
type LetterTypeInfo struct {
	Code  LetterType `json:"code"`
	Label string     `json:"label"`
}

var letterTypeCatalog = []LetterTypeInfo{
	{Code: LetterTypeNOC, Label: "NOC"},
	{Code: LetterTypeVisaLetter, Label: "VISA Letter"},
	{Code: LetterTypeOfferLetter, Label: "Offer Letter"},
	{Code: LetterTypeInternshipCompletion, Label: "Internship Completion"},
	{Code: LetterTypeCertificateReimbursement, Label: "Certificate Reimbursement"},
	{Code: LetterTypeHRAddressProof, Label: "HR Address Proof"},
	{Code: LetterTypeRelievingLetter, Label: "Relieving Letter"},
}

// LetterTypes returns the catalog in display order.
func LetterTypes() []LetterTypeInfo {
	out := make([]LetterTypeInfo, len(letterTypeCatalog))
	copy(out, letterTypeCatalog)
	return out
}

// Label returns the display label, or the raw code when unknown.
func (t LetterType) Label() string {
	for _, info := range letterTypeCatalog {
		if info.Code == t {
			return info.Label
		}
	}
	return string(t)
}

// Valid reports whether t is in the catalog.
func (t LetterType) Valid() bool {
	for _, info := range letterTypeCatalog {
		if info.Code == t {
			return true
		}
	}
	return false
}

// ParseLetterType accepts a code or a label, case-insensitive, with spaces and hyphens treated as underscores.
func ParseLetterType(raw string) (LetterType, error) {
	key := normalizeLetterType(raw)
	if key == "" {
		return "", fmt.Errorf("letter type is required")
	}
	for _, info := range letterTypeCatalog {
		if key == string(info.Code) || key == normalizeLetterType(info.Label) {
			return info.Code, nil
		}
	}
	return "", fmt.Errorf("unknown letter type %q", raw)
}

func normalizeLetterType(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	return key
}
