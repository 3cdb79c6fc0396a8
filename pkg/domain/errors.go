package domain

import "errors"

// ErrorKind classifies validation problems. Kinds are data, not Go errors.
type ErrorKind string

const (
	KindMissingRequiredField  ErrorKind = "MissingRequiredField"
	KindInvalidFieldType      ErrorKind = "InvalidFieldType"
	KindOutOfRange            ErrorKind = "OutOfRange"
	KindUnresolvedExpression  ErrorKind = "UnresolvedExpression"
	KindSchemaNotFound        ErrorKind = "SchemaNotFound"
	KindInvalidConnection     ErrorKind = "InvalidConnection"
	KindMissingTrigger        ErrorKind = "MissingTrigger"
	KindUnconfiguredTrigger   ErrorKind = "UnconfiguredTrigger"
	KindMissingAuthentication ErrorKind = "MissingAuthentication"
	KindOrphanedAction        ErrorKind = "OrphanedAction"
	KindIncompleteNode        ErrorKind = "IncompleteNode"
	KindInvalidNodeConfig     ErrorKind = "InvalidNodeConfig"
	KindUnknownReference      ErrorKind = "UnknownReference"
	KindInvalidNode           ErrorKind = "InvalidNode"
	KindMissingAction         ErrorKind = "MissingAction"
)

// ErrInvalidConnection is returned when a connection would break a graph invariant.
var ErrInvalidConnection = errors.New("invalid connection")

// ErrNodeNotFound is returned when an operation names a node that does not exist.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when adding a node whose id is taken.
var ErrDuplicateNode = errors.New("duplicate node id")

// ErrInvalidNode is returned for nodes with an empty id or unknown type.
var ErrInvalidNode = errors.New("invalid node")

// ErrSchemaNotFound is returned when a node references an unknown app, trigger or operation.
var ErrSchemaNotFound = errors.New("schema not found")

// ErrFlowNotFound is returned when a flow id cannot be found in the store.
var ErrFlowNotFound = errors.New("flow not found")

// ErrNotExecutable is returned when activating a flow that is not ready.
var ErrNotExecutable = errors.New("workflow is not ready to execute")
