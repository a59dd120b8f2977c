package model

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Query evaluates a JSONPath selector against doc and returns the matches.
// Mappings in the results are plain map[string]any values.
//
//	ports, err := model.Query(doc, "$.topology.Server.ms1.ListenPort")
func Query(doc *Dict, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("model: invalid jsonpath %q: %w", selector, err)
	}
	return x.Get(doc.Plain()), nil
}
