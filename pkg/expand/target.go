package expand

// TargetKind identifies which constructor a tagged literal expands to.
type TargetKind int

const (
	// TargetObject expands to an object identifier constructor.
	TargetObject TargetKind = iota
	// TargetAddress expands to an address derived from an object identifier.
	TargetAddress
)

const (
	tagObject  = "object"
	tagAddress = "address"
)

func (k TargetKind) String() string {
	switch k {
	case TargetObject:
		return tagObject
	case TargetAddress:
		return tagAddress
	default:
		return "unknown"
	}
}

// targetForTag maps a suffix tag to its target kind. Tags match exactly;
// case variants are rejected.
func targetForTag(tag string) (TargetKind, bool) {
	switch tag {
	case tagObject:
		return TargetObject, true
	case tagAddress:
		return TargetAddress, true
	default:
		return 0, false
	}
}
