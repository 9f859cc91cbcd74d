// Package sample bundles the example contract offered to first-time users.
package sample

import _ "embed"

//go:embed contract.txt
var contract string

// Contract returns the bundled sample contract text.
func Contract() string { return contract }
