package session

import "fmt"

// ErrPersistence indicates an infrastructure/repository failure inside the
// coordinator. The operation is abandoned wholesale: no partial broadcast, no
// partial state mutation.
var ErrPersistence = fmt.Errorf("chat session persistence error")
