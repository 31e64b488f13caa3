package rewrite

import "fmt"

// DocumentError is a failure to read or write one document.
type DocumentError struct {
	Name string
	Op   string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
