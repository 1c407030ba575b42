// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"errors"
	"strings"
)

// FileScheme is assumed for locations written without a scheme.
const FileScheme = "file"

// ErrEmptyLocation is returned when parsing an empty location.
var ErrEmptyLocation = errors.New("empty cache location")

// Location is a parsed cache location, <scheme>://<root>.
type Location struct {
	Scheme string
	Root   string
}

// ParseLocation splits s into scheme and root. A string without "://" is a
// local directory.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, ErrEmptyLocation
	}

	scheme, root, found := strings.Cut(s, "://")
	if !found {
		return Location{Scheme: FileScheme, Root: s}, nil
	}
	if scheme == "" {
		return Location{}, &SchemeError{Scheme: scheme}
	}

	return Location{Scheme: strings.ToLower(scheme), Root: root}, nil
}

// MustParseLocation is ParseLocation for constant locations. It panics on
// error.
func MustParseLocation(s string) Location {
	loc, err := ParseLocation(s)
	if err != nil {
		panic(err)
	}
	return loc
}

func (l Location) String() string {
	return l.Scheme + "://" + l.Root
}

// Join returns the slash separated path of name beneath the location root.
func (l Location) Join(name string) string {
	root := strings.TrimRight(l.Root, "/")
	if root == "" {
		if strings.HasPrefix(l.Root, "/") {
			return "/" + name
		}
		return name
	}
	return root + "/" + name
}
