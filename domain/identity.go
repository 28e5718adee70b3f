package domain

import "fmt"

// FunctionId is the canonical identity of an analyzed function: the triple
// (file path, fully-qualified name, definition line). Two ids are equal iff
// all three fields match; the type is comparable so it can key a Go map
// directly without a hashing helper.
type FunctionId struct {
	FilePath       string
	QualifiedName  string
	DefinitionLine int
}

// String renders a stable, human-readable identifier, e.g.
// "src/lib.rs:Parser::parse:42".
func (id FunctionId) String() string {
	return fmt.Sprintf("%s:%s:%d", id.FilePath, id.QualifiedName, id.DefinitionLine)
}

// QualifiedFunctionName builds the `Receiver::method` / bare `name` form
// used as the second identity field, per the data model's naming rule.
func QualifiedFunctionName(receiver, name string) string {
	if receiver == "" {
		return name
	}
	return receiver + "::" + name
}

// Less gives a deterministic total order over ids, used for the output
// boundary's stable tie-break (file path, line, name) and anywhere map
// iteration needs a reproducible order.
func (id FunctionId) Less(other FunctionId) bool {
	if id.FilePath != other.FilePath {
		return id.FilePath < other.FilePath
	}
	if id.DefinitionLine != other.DefinitionLine {
		return id.DefinitionLine < other.DefinitionLine
	}
	return id.QualifiedName < other.QualifiedName
}
