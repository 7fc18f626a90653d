package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Regex patterns for validation
var (
	// Email: RFC 5322 simplified pattern
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Document id: lowercase slug, e.g. "terms", "privacy-policy"
	DocumentIDRegex = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

	// Site domain: host name with optional port
	DomainRegex = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9.\-]*[a-zA-Z0-9])?(?::[0-9]{1,5})?$`)

	DocumentIDMaxLength = 64
	TitleMaxLength      = 255
	SubjectMaxLength    = 255
	MessageMaxLength    = 10000
)

// ValidateDocumentID validates a legal document key
// Examples: terms, privacy-policy, cookies_v2
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document id is required")
	}

	if len(id) > DocumentIDMaxLength {
		return fmt.Errorf("document id too long: maximum %d characters", DocumentIDMaxLength)
	}

	if !DocumentIDRegex.MatchString(id) {
		return fmt.Errorf("invalid document id format: lowercase letters, digits, '-' and '_' only")
	}

	return nil
}

// ValidateTitle validates a required, bounded display text
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}

	if utf8.RuneCountInString(title) > TitleMaxLength {
		return fmt.Errorf("title too long: maximum %d characters", TitleMaxLength)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if len(email) > 254 {
		return fmt.Errorf("email too long: maximum 254 characters")
	}

	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ContactMessage holds the user-supplied contact form fields
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ValidateContactMessage validates a contact form submission
func ValidateContactMessage(m ContactMessage) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}

	if err := ValidateEmail(m.Email); err != nil {
		return err
	}

	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if utf8.RuneCountInString(m.Subject) > SubjectMaxLength {
		return fmt.Errorf("subject too long: maximum %d characters", SubjectMaxLength)
	}

	if strings.TrimSpace(m.Message) == "" {
		return fmt.Errorf("message is required")
	}
	if utf8.RuneCountInString(m.Message) > MessageMaxLength {
		return fmt.Errorf("message too long: maximum %d characters", MessageMaxLength)
	}

	return nil
}

// ValidateDomain validates a site host name as sent in the Host header
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain is required")
	}

	if len(domain) > 253 || !DomainRegex.MatchString(domain) {
		return fmt.Errorf("invalid domain: %s", domain)
	}

	return nil
}

// IsLocalURL reports whether target is a same-site path that is safe to redirect to.
// Absolute URLs, scheme-relative URLs ("//host") and backslash tricks are rejected.
func IsLocalURL(target string) bool {
	if target == "" || !strings.HasPrefix(target, "/") {
		return false
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	return !strings.ContainsAny(target, "\r\n")
}
