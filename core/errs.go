package core

import "errors"

var (
	ErrTelegramTokenEmpty = errors.New("empty telegram token")
	ErrTelegramUsersEmpty = errors.New("no authorized telegram users")
	ErrSearchQueryEmpty   = errors.New("empty search query")
)
