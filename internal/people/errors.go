package people

import "errors"

var (
	ErrAuthenticationFailed = errors.New("invalid username and/or password")
	ErrEmployeeNotFound     = errors.New("employee not found in store")
	ErrReadOnly             = errors.New("store is read-only")
)
