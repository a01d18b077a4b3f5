// Package checkpoint persists pagination cursors between runs so an
// interrupted sync resumes where it stopped.
package checkpoint

// Store saves and retrieves the last committed cursor per connector and
// endpoint. Get returns "" when no cursor has been saved.
type Store interface {
	Get(connector, endpoint string) (string, error)
	Set(connector, endpoint, cursor string) error
	Clear(connector, endpoint string) error
}
