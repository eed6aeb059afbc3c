package committree

import "errors"

// Protocol errors: the operation log and the snapshot state disagree.
var (
	// ErrDuplicateNode indicates an add for an id already present.
	ErrDuplicateNode = errors.New("node already exists")

	// ErrUnknownNode indicates an operation referencing an id not present.
	ErrUnknownNode = errors.New("node does not exist")

	// ErrReservedNodeID indicates a node with id 0, which stands for "no parent".
	ErrReservedNodeID = errors.New("node id 0 is reserved")
)

// Source errors
var (
	// ErrMissingDuration indicates a hierarchy node with no initial duration entry.
	ErrMissingDuration = errors.New("no initial duration for node")
)
