package strategy

import _ "embed"

//go:embed basic.json
var basicJSON []byte

// Basic returns the bundled multi-deck basic strategy table. The table is
// validated at load; a parse failure here means the embedded file was
// corrupted and is treated as fatal by callers.
func Basic() (*Table, error) {
	return Parse(basicJSON)
}
