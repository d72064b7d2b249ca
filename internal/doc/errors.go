package doc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDoc is matched by every *InvalidDocError.
var ErrInvalidDoc = errors.New("invalid doc")

// InvalidDocError reports a value that is not a recognized doc node.
type InvalidDocError struct {
	// Doc is the offending value when it came from a Go tree.
	Doc Doc
	// Type is the unrecognized "type" tag when the value was decoded.
	Type string
	// Value is the decoded value that had no recognizable shape.
	Value any
}

// Error describes the offending value and the accepted tags.
func (e *InvalidDocError) Error() string {
	switch {
	case e.Type != "":
		return fmt.Sprintf("unexpected doc.type %q, expected it to be %s", e.Type, expectedTypes())
	case e.Value != nil:
		return fmt.Sprintf("unexpected doc value of type %T, expected a string, an array or an object", e.Value)
	case e.Doc == nil:
		return "unexpected doc 'nil'"
	default:
		return fmt.Sprintf("unexpected doc %T, expected one of the doc node types", e.Doc)
	}
}

// Is makes errors.Is(err, ErrInvalidDoc) hold.
func (e *InvalidDocError) Is(target error) bool {
	return target == ErrInvalidDoc
}

func invalid(d Doc) error {
	return &InvalidDocError{Doc: d}
}

func expectedTypes() string {
	kinds := ObjectKinds()
	quoted := make([]string, len(kinds))
	for i, k := range kinds {
		quoted[i] = "'" + k.String() + "'"
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}
