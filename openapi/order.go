package openapi

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Gobd/zodgen/ir"
)

// KeyOrderOf records the declared key order of every mapping in a YAML or
// JSON document, keyed by the JSON pointer of the mapping.
func KeyOrderOf(data []byte) (ir.KeyOrder, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "read key order").Wrap(err)
	}
	order := ir.KeyOrder{}
	recordKeys(&root, "", order, 0)
	return order, nil
}

// maxAliasDepth stops alias chains that refer back to themselves.
const maxAliasDepth = 64

func recordKeys(n *yaml.Node, ptr string, order ir.KeyOrder, aliases int) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			recordKeys(c, ptr, order, aliases)
		}
	case yaml.MappingNode:
		keys := make([]string, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i].Value
			if k == "<<" {
				continue
			}
			keys = append(keys, k)
			recordKeys(n.Content[i+1], ptr+"/"+escapeToken(k), order, aliases)
		}
		order[ptr] = keys
	case yaml.SequenceNode:
		for i, c := range n.Content {
			recordKeys(c, ptr+"/"+strconv.Itoa(i), order, aliases)
		}
	case yaml.AliasNode:
		if n.Alias != nil && aliases < maxAliasDepth {
			recordKeys(n.Alias, ptr, order, aliases+1)
		}
	}
}

func escapeToken(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}
