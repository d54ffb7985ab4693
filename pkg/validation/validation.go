package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxIDLength      = 100
	maxTitleLength   = 100
	maxContentLength = 2000
)

// ValidateUserID checks an id referencing another user in an inbound
// event. Ids are minted by the main backend; only sanity limits apply
// here.
func ValidateUserID(id, fieldName string) error {
	if id == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, maxIDLength)
	}
	return nil
}

// ValidateRoomID checks a call room or stream room reference.
func ValidateRoomID(id, fieldName string) error {
	if id == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, maxIDLength)
	}
	return nil
}

// ValidateStreamTitle checks a livestream title.
func ValidateStreamTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("stream title is required")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("stream title is too long (max %d characters)", maxTitleLength)
	}
	if !utf8.ValidString(title) {
		return fmt.Errorf("stream title contains invalid characters")
	}
	return nil
}

// ValidateCommentContent checks a post comment body.
func ValidateCommentContent(content string) error {
	if content == "" {
		return fmt.Errorf("comment content is required")
	}
	if len(content) > maxContentLength {
		return fmt.Errorf("comment content is too long (max %d characters)", maxContentLength)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("comment content contains invalid characters")
	}
	return nil
}
