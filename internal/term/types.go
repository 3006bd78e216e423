package term

// SortKind classifies a Sort's shape (spec.md §3's Term "type").
type SortKind uint8

const (
	SortBool SortKind = iota
	SortUninterpreted
	SortDatatype
)

// Cardinality is whether a sort's domain is finite or infinite. The
// datatype theory's cardinality fixpoint (spec.md §4.8) consumes this
// for the base sorts that appear in constructor argument types.
type Cardinality uint8

const (
	CardUnknown Cardinality = iota
	CardFinite
	CardInfinite
)

// Sort is a type in the term store's universe. Datatype sorts carry no
// constructor schema here: internal/datatype owns that keyed by Sort,
// keeping the term store theory-agnostic the same way internal/satcore
// stays agnostic about what its variables mean.
type Sort struct {
	ID   int
	Kind SortKind
	Name string

	// Base is the declared cardinality for Bool/Uninterpreted sorts.
	// Datatype sorts leave this CardUnknown; their cardinality comes from
	// internal/datatype's fixpoint instead.
	Base Cardinality
}

func (s *Sort) String() string { return s.Name }

// FuncRole tags what role a function symbol plays for the datatype
// theory (spec.md §4.8 pattern-matches on is-C/sel_{C,i}/constructor
// applications); Plain covers every uninterpreted or purely structural
// symbol.
type FuncRole uint8

const (
	RolePlain FuncRole = iota
	RoleConstructor
	RoleSelector
	RoleTester
)

// FuncSymbol is an interpreted or uninterpreted function/predicate
// symbol. Constructor/Selector/Tester symbols additionally carry the
// datatype-specific indices internal/datatype needs to recognize which
// constructor (and, for a selector, which argument position) they
// belong to.
type FuncSymbol struct {
	ID     int
	Name   string
	Role   FuncRole
	Params []*Sort
	Result *Sort

	// Valid iff Role != RolePlain.
	CstorIndex int
	ArgIndex   int // valid iff Role == RoleSelector
}

func (f *FuncSymbol) String() string { return f.Name }
