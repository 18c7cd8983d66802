package common

import "errors"

var messages = []struct {
	err error
	msg string
}{
	{ErrAlreadyExists, "An account with this username already exists"},
	{ErrUserNotFound, "The user does not exist"},
	{ErrSelfShare, "You cannot share with yourself"},
	{ErrAlreadyShared, "Already shared with this user"},
	{ErrNotOwner, "Only the owner can do this"},
	{ErrInvalidName, "The file name must end with .csv and contain a single dot"},
	{ErrNameCollision, "A file with this name already exists"},
	{ErrParse, "The file is not a valid CSV document"},
	{ErrUnknownColumn, "The column does not exist"},
	{ErrValidation, "The request is invalid"},
	{ErrorNotFound, "Not found"},
	{ErrorUnauthorized, "Invalid username or password"},
	{ErrInvalidToken, "Invalid or expired token"},
	{ErrTokenExpired, "The session has expired"},
	{ErrTokenRevoked, "The session has ended"},
	{ErrRefreshTokenExpired, "The session has expired"},
	{ErrStorage, "Storage failure, nothing was changed"},
}

// Message returns the human-readable text shown to the user for err.
// A nil error yields an empty string; unknown errors yield a generic text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Internal error"
}
