package ir

import "github.com/catapillie/marin/internal/entity"

// Export is one publicly visible binding of a file, named for lookup by
// importers (§2 step 3: "a public export table per file").
type Export struct {
	Name     string
	EntityID entity.ID
}

// Module is one file's typed IR: its top-level statements in source order
// (evaluated for their side effects and bindings when the file is loaded)
// and its export table.
type Module struct {
	FileID     int
	Statements []Statement
	Exports    []Export
}
