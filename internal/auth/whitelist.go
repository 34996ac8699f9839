package auth

import (
	"encoding/json"
	"os"
	"strings"
)

// Whitelist decides which emails get the admin role at signup.
type Whitelist struct {
	emails map[string]struct{}
}

// LoadWhitelist reads admin emails from a JSON file of the form
// {"admin_emails": ["a@x.org", ...]}. A missing file yields an empty
// whitelist rather than an error; no admins is a valid configuration.
func LoadWhitelist(path string) (*Whitelist, error) {
	wl := &Whitelist{emails: map[string]struct{}{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return wl, nil
		}
		return nil, err
	}
	var doc struct {
		AdminEmails []string `json:"admin_emails"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for _, email := range doc.AdminEmails {
		email = NormalizeEmail(email)
		if email != "" {
			wl.emails[email] = struct{}{}
		}
	}
	return wl, nil
}

// NewWhitelist builds a whitelist from a fixed list of emails.
func NewWhitelist(emails ...string) *Whitelist {
	wl := &Whitelist{emails: map[string]struct{}{}}
	for _, email := range emails {
		wl.emails[NormalizeEmail(email)] = struct{}{}
	}
	return wl
}

// IsAdmin reports whether the email is whitelisted for the admin role.
func (w *Whitelist) IsAdmin(email string) bool {
	if w == nil {
		return false
	}
	_, ok := w.emails[NormalizeEmail(strings.TrimSpace(email))]
	return ok
}

// RoleFor returns the role to assign at signup.
func (w *Whitelist) RoleFor(email string) string {
	if w.IsAdmin(email) {
		return RoleAdmin
	}
	return RoleUser
}
