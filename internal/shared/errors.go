package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Crawl errors. A crawl that fails with any of these aborts without
	// persisting anything.
	ErrAuth    = fmt.Errorf("session acquisition failed")
	ErrNetwork = fmt.Errorf("request failed")
	ErrData    = fmt.Errorf("unexpected response shape")
	ErrStore   = fmt.Errorf("store operation failed")

	ErrCreatorNotFound = fmt.Errorf("creator not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
