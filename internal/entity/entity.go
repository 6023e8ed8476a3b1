// Package entity implements the dense, append-only entity table, the
// lexical scope stack, and the label stack the type checker maintains
// while walking a file in evaluation order (§3: Entity table, Scope,
// Label).
//
// Grounded on funvibe/funxy's internal/symbols (a Symbol struct carrying a
// Kind tag plus several kind-specific optional fields, and a SymbolTable
// chained via an `outer *SymbolTable` pointer per scope) adapted to match
// §3's stricter contract: a single flat append-only table indexed by a
// stable integer id (rather than per-scope maps of symbols that can shadow
// and disappear), a slice-based scope stack rather than a linked list, and
// an explicit Dummy variant for the pre-reservation of recursive type ids
// that funxy's IsPending flag approximates but does not name as its own
// entity kind.
package entity

import "github.com/catapillie/marin/internal/token"

// ID identifies one entity in the table. IDs are stable for the whole
// compilation run once assigned (§3: "Entities live for the whole
// compilation run").
type ID int

// Kind tags which variant of entity data an Entity carries.
type Kind int

const (
	Variable Kind = iota
	UserType
	Record
	Union
	Class
	Instance
	Import
	Alias
	Dummy
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case UserType:
		return "user_type"
	case Record:
		return "record"
	case Union:
		return "union"
	case Class:
		return "class"
	case Instance:
		return "instance"
	case Import:
		return "import"
	case Alias:
		return "alias"
	case Dummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// VariableData is the kind-specific payload of a Variable entity: its
// generalized scheme. SchemeID indexes into the types package's scheme
// table rather than embedding it directly, so entity does not import
// types (types instead imports entity, for Record/Union references in a
// term).
type VariableData struct {
	SchemeID int
	// IsClassItem marks a Variable entity that names a class item's
	// abstract signature rather than any concrete, runtime-bound value
	// (§4.2.4): it is never the target of a LetStatement, so nothing ever
	// gives it a stack slot. A reference to it must instead be resolved,
	// via its single Constraint, to the matching instance's own concrete
	// item entity before lowering can compile it.
	IsClassItem bool
}

// FieldRef names one field of a record by name and the type_id of its
// declared type.
type FieldRef struct {
	Name   string
	TypeID int
}

// RecordData is the kind-specific payload of a Record entity (§3: "a
// record carries its type-argument list, its field list with each field's
// type id, and a generalized scheme").
type RecordData struct {
	TypeArgs []int // type_ids of the record's own type parameters
	Fields   []FieldRef
	SchemeID int
}

// VariantRef names one tagged alternative of a union.
type VariantRef struct {
	Tag     string
	ArgsIDs []int // type_ids of the variant's argument types
}

// UnionData is the kind-specific payload of a Union entity.
type UnionData struct {
	TypeArgs []int
	Variants []VariantRef
}

// UserTypeData is the kind-specific payload of a bare, fieldless named
// type introduced by something other than record/union (reserved for
// built-in or opaque user types).
type UserTypeData struct {
	TypeArgs []int
}

// ClassData is the kind-specific payload of a Class entity: its class and
// associated arities and its item signatures (§4.2.4).
type ClassData struct {
	ClassArgs      []int // fresh type_ids representing the class's own parameters
	AssociatedArgs []int
	Items          map[string]int // item name -> type_id of its signature, expressed in terms of ClassArgs/AssociatedArgs
}

// InstanceData is the kind-specific payload of an Instance entity: the
// concrete types it specializes a class to, and its item implementations.
type InstanceData struct {
	ClassID        ID
	ClassArgs      []int // type_ids the class args are bound to
	AssociatedArgs []int
	Items          map[string]ID // item name -> entity id of its Variable
}

// ImportData is the kind-specific payload of an Import entity: the
// original entity it aliases, possibly in another file.
type ImportData struct {
	Target ID
}

// AliasData is the kind-specific payload of an Alias entity: a transparent
// type synonym.
type AliasData struct {
	TypeArgs []int
	Target   int // type_id of the aliased type expression
}

// Entity is one row of the entity table. Exactly one of the Data pointer
// fields is non-nil, selected by Kind.
type Entity struct {
	ID     ID
	Kind   Kind
	Name   string
	Public bool
	Loc    token.Span

	Variable *VariableData
	Record   *RecordData
	Union    *UnionData
	UserType *UserTypeData
	Class    *ClassData
	Instance *InstanceData
	Import   *ImportData
	Alias    *AliasData
}

// Table is the dense, append-only entity table (§3).
type Table struct {
	entities []Entity
}

// NewTable returns an empty entity table.
func NewTable() *Table {
	return &Table{}
}

// Reserve appends a Dummy entity and returns its id, so a recursive
// declaration can refer to itself before its real data is known (§3: "A
// Dummy slot is used to pre-reserve an id so recursive types can name
// themselves; it is overwritten before the enclosing statement
// completes").
func (t *Table) Reserve(name string, public bool, loc token.Span) ID {
	id := ID(len(t.entities))
	t.entities = append(t.entities, Entity{ID: id, Kind: Dummy, Name: name, Public: public, Loc: loc})
	return id
}

// Overwrite replaces a previously Reserve'd Dummy slot with its real data.
// It panics if id does not currently hold a Dummy, since that would mean a
// recursive declaration completed twice or the id was never reserved.
func (t *Table) Overwrite(id ID, e Entity) {
	if t.entities[id].Kind != Dummy {
		panic("entity: Overwrite called on a non-Dummy slot")
	}
	e.ID = id
	t.entities[id] = e
}

// Add appends a brand-new entity (one with no prior Dummy reservation) and
// returns its id.
func (t *Table) Add(e Entity) ID {
	id := ID(len(t.entities))
	e.ID = id
	t.entities = append(t.entities, e)
	return id
}

// Get returns the entity at id.
func (t *Table) Get(id ID) *Entity {
	return &t.entities[id]
}

// Len returns the number of entities in the table.
func (t *Table) Len() int {
	return len(t.entities)
}

// All returns every entity in insertion order. Iteration over the entity
// table must be deterministic (§5: "used when searching for admissible
// records"); insertion order, which this always reflects, satisfies that.
func (t *Table) All() []Entity {
	return t.entities
}
