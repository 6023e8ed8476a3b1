package diagnostics

// Code is a stable, machine-readable diagnostic identifier (§6-7).
type Code string

// Dependency analysis codes (§4.1, §7).
const (
	NoSuchDependency    Code = "no_such_dependency"
	UnstagedDependency  Code = "unstaged_dependency"
	SelfDependency      Code = "self_dependency"
	DependencyCycle     Code = "dependency_cycle"
	RedundantSuper      Code = "redundant_super"
	OutsideDependency   Code = "outside_dependency"
	FileReimported      Code = "file_reimported"
	EmptyImport         Code = "empty_import"
	InvalidImportQuery  Code = "invalid_import_query"
)

// Syntax-shape codes, surfaced by the checker when the AST doesn't fit a
// slot it expects (§7).
const (
	InvalidExpression Code = "invalid_expression"
	InvalidPattern    Code = "invalid_pattern"
	InvalidType       Code = "invalid_type"
	InvalidSignature  Code = "invalid_signature"
	InvalidLabel      Code = "invalid_label"
	RefutablePattern  Code = "refutable_pattern"
)

// Name resolution codes (§7).
const (
	UnknownBinding     Code = "unknown_binding"
	NotVariable        Code = "not_variable"
	UnknownVariant     Code = "unknown_variant"
	UnknownClassItem   Code = "unknown_class_item"
)

// Type codes (§7, §4.2.1, §4.2.4).
const (
	TypeMismatch          Code = "type_mismatch"
	UnsatisfiedConstraints Code = "unsatisfied_constraints"
	AmbiguousInstance     Code = "ambiguous_instance"
)

// Pattern/structure codes (§7, §4.2.3, §4.3).
const (
	NoAdmissibleRecords        Code = "no_admissible_records"
	AmbiguousRecord            Code = "ambiguous_record"
	UninitializedFields        Code = "uninitialized_fields"
	IncorrectVariantArgs       Code = "incorrect_variant_args"
	UnreachableConditionalBranches Code = "unreachable_conditional_branches"
	NonExhaustiveConditional   Code = "non_exhaustive_conditional"
)

// Control-flow codes (§7).
const (
	InvalidBreak     Code = "invalid_break"
	InvalidSkip      Code = "invalid_skip"
	UnskippableBlock Code = "unskippable_block"
)
