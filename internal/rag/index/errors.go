package index

import "fmt"

// IndexWriteError covers failed create, upsert and delete calls.
type IndexWriteError struct {
	Op  string
	Err error
}

func (e *IndexWriteError) Error() string {
	if e == nil {
		return "vector index write failed"
	}
	return fmt.Sprintf("vector index %s failed: %v", e.Op, e.Err)
}

func (e *IndexWriteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IndexReadError covers failed search and stats calls.
type IndexReadError struct {
	Op  string
	Err error
}

func (e *IndexReadError) Error() string {
	if e == nil {
		return "vector index read failed"
	}
	return fmt.Sprintf("vector index %s failed: %v", e.Op, e.Err)
}

func (e *IndexReadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
