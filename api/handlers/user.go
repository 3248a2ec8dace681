// ABOUTME: Caller identity shared by every article and highlight operation
// ABOUTME: The user is named by the X-User-ID header; authentication happens upstream

package handlers

import "strings"

const defaultUserID = "anonymous"

// UserInput is embedded in the input of user-scoped operations
type UserInput struct {
	UserID string `header:"X-User-ID" maxLength:"128" doc:"Owner of the articles; anonymous when omitted"`
}

// User returns the caller's user id
func (u UserInput) User() string {
	if id := strings.TrimSpace(u.UserID); id != "" {
		return id
	}
	return defaultUserID
}
