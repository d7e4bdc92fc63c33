// Package identifier parses model references of the form "owner/name" and
// "owner/name:version".
package identifier

import (
	"fmt"
	"strings"

	"github.com/xraph/replicate"
)

// ErrInvalid is returned for any string that is not a well-formed reference.
var ErrInvalid = fmt.Errorf("%w: identifier must be in the format \"owner/name\" or \"owner/name:version\"",
	replicate.ErrValidation)

// Identifier names a model and optionally pins one of its versions.
// Values are only produced by Parse.
type Identifier struct {
	Owner   string
	Name    string
	Version string
}

// Parse splits s into owner, name and optional version. Exactly one "/"
// is accepted; the part after it is split on the first ":". A trailing
// ":" with no version is rejected.
func Parse(s string) (Identifier, error) {
	owner, rest, ok := strings.Cut(s, "/")
	if !ok || strings.Contains(rest, "/") {
		return Identifier{}, fmt.Errorf("parse %q: %w", s, ErrInvalid)
	}

	name, version, hasVersion := strings.Cut(rest, ":")
	if owner == "" || name == "" || (hasVersion && version == "") {
		return Identifier{}, fmt.Errorf("parse %q: %w", s, ErrInvalid)
	}

	return Identifier{Owner: owner, Name: name, Version: version}, nil
}

// HasVersion reports whether the identifier pins a version.
func (i Identifier) HasVersion() bool { return i.Version != "" }

// Model returns the "owner/name" part.
func (i Identifier) Model() string { return i.Owner + "/" + i.Name }

// String returns the identifier in the form accepted by Parse.
func (i Identifier) String() string {
	if i.Version == "" {
		return i.Model()
	}
	return i.Model() + ":" + i.Version
}
