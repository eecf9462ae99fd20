// ABOUTME: Four-way field-merge policy for scalar contact fields
// ABOUTME: Decides insert, update, delete, or no-op per field from local and remote values
package sync

// fieldOp is the operation the merge policy selects for one field.
type fieldOp int

const (
	opNone fieldOp = iota
	opInsert
	opDelete
	opUpdate
)

// mergeField applies the merge policy to one optional field:
//
//	local absent,  remote absent  -> no-op
//	local absent,  remote present -> insert
//	local present, remote absent  -> delete
//	both present, unequal         -> update to the remote value
//	both present, equal           -> no-op
//
// Remote is authoritative; local edits are never preserved. Photos are
// deliberately not merged by value here: they are compared by change token
// instead, since re-fetching binary data to compare it would defeat the
// point of the token.
func mergeField(localValue, remoteValue string) fieldOp {
	switch {
	case localValue == "" && remoteValue == "":
		return opNone
	case localValue == "":
		return opInsert
	case remoteValue == "":
		return opDelete
	case localValue != remoteValue:
		return opUpdate
	default:
		return opNone
	}
}
