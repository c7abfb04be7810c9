// Package cli parses "-flag value" style command-line arguments.
//
// A flag is any argument that starts with "-" followed by something other
// than a digit or whitespace, so "-5" is a value. A value binds to the flag
// right before it; a value without a preceding flag is ignored. A flag given
// twice keeps its last value.
package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Args maps flags to their optional values.
type Args struct {
	values map[string]*string
}

// Parse builds Args from a raw argument list, usually os.Args[1:].
func Parse(args []string) *Args {
	a := &Args{values: make(map[string]*string)}
	a.Parse(args)
	return a
}

// Parse adds args to the already parsed flags.
func (a *Args) Parse(args []string) {
	last := ""
	for _, arg := range args {
		if IsFlag(arg) {
			a.values[arg] = nil
			last = arg
			continue
		}
		if last != "" {
			value := arg
			a.values[last] = &value
			last = ""
		}
	}
}

// IsFlag reports whether arg names a flag.
func IsFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	r, _ := utf8.DecodeRuneInString(arg[1:])
	return !unicode.IsDigit(r) && !unicode.IsSpace(r)
}

// IsValue reports whether arg is a value rather than a flag.
func IsValue(arg string) bool {
	return !IsFlag(arg)
}

func (a *Args) NumFlags() int { return len(a.values) }

func (a *Args) HasFlag(flag string) bool {
	_, ok := a.values[flag]
	return ok
}

// HasValue reports whether flag was given with a value.
func (a *Args) HasValue(flag string) bool {
	return a.values[flag] != nil
}

// String returns the value of flag, or backup when the flag is missing or
// has no value.
func (a *Args) String(flag, backup string) string {
	if v := a.values[flag]; v != nil {
		return *v
	}
	return backup
}

// Path returns the value of flag as a cleaned path, or backup when there is
// no usable value.
func (a *Args) Path(flag, backup string) string {
	v := a.values[flag]
	if v == nil || strings.ContainsRune(*v, 0) {
		return backup
	}
	return filepath.Clean(*v)
}

// Int returns the value of flag as an integer, or backup when the flag is
// missing or its value does not parse.
func (a *Args) Int(flag string, backup int) int {
	v := a.values[flag]
	if v == nil {
		return backup
	}
	n, err := strconv.Atoi(strings.TrimSpace(*v))
	if err != nil {
		return backup
	}
	return n
}

// Format renders the flags in sorted order, for logging.
func (a *Args) Format() string {
	flags := make([]string, 0, len(a.values))
	for flag := range a.values {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	parts := make([]string, len(flags))
	for i, flag := range flags {
		if v := a.values[flag]; v != nil {
			parts[i] = fmt.Sprintf("%s=%s", flag, *v)
		} else {
			parts[i] = flag
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
