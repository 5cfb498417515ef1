package graph

import "fmt"

// StructuralErrorCode enumerates the ways a graph mutation can be rejected.
type StructuralErrorCode string

const (
	ErrDuplicateFilePath StructuralErrorCode = "duplicate_file_path"
	ErrMissingEndpoint   StructuralErrorCode = "missing_endpoint"
	ErrSelfLoop          StructuralErrorCode = "self_loop"
	ErrDuplicateEdge     StructuralErrorCode = "duplicate_edge"
	ErrWouldCreateCycle  StructuralErrorCode = "would_create_cycle"
	ErrNodeNotFound      StructuralErrorCode = "not_found"
)

// StructuralError reports a rejected mutation of a Project's graph: a
// duplicate file path, a dangling edge endpoint, a self-loop, a duplicate
// edge, or an edge that would introduce a cycle.
type StructuralError struct {
	Code    StructuralErrorCode
	Message string
}

func (e *StructuralError) Error() string {
	return e.Message
}

func newStructuralError(code StructuralErrorCode, format string, args ...any) *StructuralError {
	return &StructuralError{Code: code, Message: fmt.Sprintf(format, args...)}
}
