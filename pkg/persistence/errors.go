package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrNodeNotFound indicates a workflow node was not found by the given identifier.
	ErrNodeNotFound = errors.New("workflow node not found")

	// ErrTransitionNotFound indicates a workflow transition was not found by the given identifier.
	ErrTransitionNotFound = errors.New("workflow transition not found")

	// ErrStateNotFound indicates no workflow state exists for the given sample and node.
	ErrStateNotFound = errors.New("sample workflow state not found")

	// ErrSampleNotFound indicates a sample was not found by the given identifier.
	ErrSampleNotFound = errors.New("sample not found")

	// ErrNodeReferenced indicates a node cannot be deleted because sample
	// history still references it.
	ErrNodeReferenced = errors.New("workflow node is referenced by sample history")
)

// NodeError wraps node-related errors with additional context.
type NodeError struct {
	Op     string // Operation being performed (e.g., "SaveNode", "DeleteNode")
	NodeID string // Node ID if applicable
	Err    error  // Underlying error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s operation failed for node %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for node errors.
func (e *NodeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewNodeError creates a new node error with context.
func NewNodeError(op, nodeID string, err error) *NodeError {
	return &NodeError{Op: op, NodeID: nodeID, Err: err}
}

// TransitionError wraps transition-related errors with additional context.
type TransitionError struct {
	Op           string // Operation being performed
	TransitionID string // Transition ID if applicable
	Err          error  // Underlying error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s operation failed for transition %s: %v", e.Op, e.TransitionID, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

func (e *TransitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewTransitionError creates a new transition error with context.
func NewTransitionError(op, transitionID string, err error) *TransitionError {
	return &TransitionError{Op: op, TransitionID: transitionID, Err: err}
}

// StateError wraps sample-state errors with additional context.
type StateError struct {
	Op       string // Operation being performed
	SampleID string // Sample ID
	NodeID   string // Node ID if applicable
	Err      error  // Underlying error
}

func (e *StateError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s operation failed for sample %s node %s: %v", e.Op, e.SampleID, e.NodeID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for sample %s: %v", e.Op, e.SampleID, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

func (e *StateError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStateError creates a new state error with context.
func NewStateError(op, sampleID, nodeID string, err error) *StateError {
	return &StateError{Op: op, SampleID: sampleID, NodeID: nodeID, Err: err}
}

// SampleError wraps sample-related errors with additional context.
type SampleError struct {
	Op       string // Operation being performed
	SampleID string // Sample ID
	Err      error  // Underlying error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("%s operation failed for sample %s: %v", e.Op, e.SampleID, e.Err)
}

func (e *SampleError) Unwrap() error {
	return e.Err
}

func (e *SampleError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSampleError creates a new sample error with context.
func NewSampleError(op, sampleID string, err error) *SampleError {
	return &SampleError{Op: op, SampleID: sampleID, Err: err}
}

// IsNodeNotFound checks if an error indicates a workflow node was not found.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsTransitionNotFound checks if an error indicates a transition was not found.
func IsTransitionNotFound(err error) bool {
	return errors.Is(err, ErrTransitionNotFound)
}

// IsStateNotFound checks if an error indicates a sample state was not found.
func IsStateNotFound(err error) bool {
	return errors.Is(err, ErrStateNotFound)
}

// IsSampleNotFound checks if an error indicates a sample was not found.
func IsSampleNotFound(err error) bool {
	return errors.Is(err, ErrSampleNotFound)
}

// IsNodeReferenced checks if an error indicates a node is still referenced
// by sample history.
func IsNodeReferenced(err error) bool {
	return errors.Is(err, ErrNodeReferenced)
}
