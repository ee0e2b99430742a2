package attrcodec

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeInvalidFormat        = "invalid_format"
	CodeInvalidEnum          = "invalid_enum"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeParseError           = "parse_error"
	CodeOverflow             = "overflow"
	CodeSchemaFail           = "schema_fail"
)

// Issue represents a single codec failure.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected shape, offending tag, etc.
	Cause   error  // Optional: underlying error.
}

// Issues is a collection of codec failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// rebaseIssues re-roots child issue paths under base so a failure deep in
// a composite reports its full position.
func rebaseIssues(base string, child Issues) Issues {
	out := make(Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		out = append(out, Issue{Path: p, Code: it.Code, Message: it.Message, Hint: it.Hint, Cause: it.Cause})
	}
	return out
}

// rebaseErr rebases err when it carries Issues and wraps it into a single
// parse_error issue otherwise.
func rebaseErr(base string, err error) Issues {
	if child, ok := AsIssues(err); ok {
		return rebaseIssues(base, child)
	}
	return Issues{Issue{Path: base, Code: CodeParseError, Message: err.Error(), Cause: err}}
}
