package internal

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("description not found")
	ErrNotInitialized  = errors.New("lod not initialized")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrInvalidScope    = errors.New("invalid scope")
)

// Scope is the hierarchical level of a code entity, broadest first.
type Scope string

const (
	ScopeProject  Scope = "project"
	ScopePackage  Scope = "package"
	ScopeModule   Scope = "module"
	ScopeClass    Scope = "class"
	ScopeFunction Scope = "function"
)

var scopeRank = map[Scope]int{
	ScopeProject:  0,
	ScopePackage:  1,
	ScopeModule:   2,
	ScopeClass:    3,
	ScopeFunction: 4,
}

func ParseScope(s string) (Scope, error) {
	scope := Scope(s)
	if _, ok := scopeRank[scope]; !ok {
		return "", ErrInvalidScope
	}
	return scope, nil
}

func (s Scope) String() string {
	return string(s)
}

// Rank orders scopes for hierarchical listing; lower is broader.
func (s Scope) Rank() int {
	return scopeRank[s]
}

// Location is where an entity lives in the source tree.
type Location struct {
	Path      string
	StartLine int
	EndLine   int
}

// Entity is one describable code unit produced by a parser. Fingerprint is
// the content hash of its normalized source.
type Entity struct {
	Scope       Scope
	Name        string
	Parent      string
	Location    Location
	Source      string
	Language    string
	Fingerprint string
}

// Identity is the stable key for an entity across edits. The fingerprint
// changes as content changes; the identity does not.
func (e Entity) Identity() string {
	return fmt.Sprintf("%s|%s|%s", e.Scope, e.Name, e.Location.Path)
}

// QualifiedName joins parent and name for display.
func (e Entity) QualifiedName() string {
	if e.Parent == "" {
		return e.Name
	}
	return e.Parent + "." + e.Name
}
