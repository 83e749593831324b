// Package validation checks field-level constraints on incoming payloads.
// Business invariants (delete guards, status cascades, answer uniqueness)
// live in the service layer; this package only rejects malformed shapes.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	TitleMinLen       = 5
	TitleMaxLen       = 100
	DescriptionMinLen = 10
	TopicNameMinLen   = 2
	TopicNameMaxLen   = 50
	CommentMaxLen     = 1000
	NameMaxLen        = 50
	PasswordMinLen    = 8
	PasswordMaxLen    = 72 // bcrypt input limit
)

// Title validates feedback, task, and changelog titles (5-100 characters).
func Title(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < TitleMinLen {
		return fmt.Errorf("title must be at least %d characters", TitleMinLen)
	}
	if n > TitleMaxLen {
		return fmt.Errorf("title must be at most %d characters", TitleMaxLen)
	}
	return nil
}

// Description validates feedback and changelog descriptions (at least 10
// characters).
func Description(description string) error {
	if utf8.RuneCountInString(strings.TrimSpace(description)) < DescriptionMinLen {
		return fmt.Errorf("description must be at least %d characters", DescriptionMinLen)
	}
	return nil
}

// TopicName validates topic names (2-50 characters).
func TopicName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < TopicNameMinLen {
		return fmt.Errorf("name must be at least %d characters", TopicNameMinLen)
	}
	if n > TopicNameMaxLen {
		return fmt.Errorf("name must be at most %d characters", TopicNameMaxLen)
	}
	return nil
}

// HexColor validates a #RRGGBB color string.
func HexColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return fmt.Errorf("must be a valid hex color")
	}
	return nil
}

// Name validates display names (1-50 characters).
func Name(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 {
		return fmt.Errorf("name is required")
	}
	if n > NameMaxLen {
		return fmt.Errorf("name must be at most %d characters", NameMaxLen)
	}
	return nil
}

// Email validates the basic shape of an email address. Deliverability is not
// checked here.
func Email(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

// Password validates password length bounds.
func Password(password string) error {
	n := len(password)
	if n < PasswordMinLen {
		return fmt.Errorf("password must be at least %d characters", PasswordMinLen)
	}
	if n > PasswordMaxLen {
		return fmt.Errorf("password must be at most %d characters", PasswordMaxLen)
	}
	return nil
}

// CommentContent validates comment bodies (1-1000 characters).
func CommentContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n == 0 {
		return fmt.Errorf("comment cannot be empty")
	}
	if n > CommentMaxLen {
		return fmt.Errorf("comment is too long (max %d characters)", CommentMaxLen)
	}
	return nil
}
