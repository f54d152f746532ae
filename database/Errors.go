package database

import "fmt"

// InstantiationError is returned by a Registry that was declared directly
// instead of being obtained from Default.
type InstantiationError struct {
	Type string
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("%s cannot be instantiated; use database.Default()", e.Type)
}
