package render

import (
	"fmt"

	"github.com/georef-ar/go-georef-etl"
)

// Node is one entity in the containment graph.
type Node struct {
	Kind georef.Kind
	Code string
	Name string
}

func (n *Node) String() string {
	return fmt.Sprintf("%s\n%s %s", n.Name, n.Kind, n.Code)
}

var nodeHash = func(n *Node) string {
	return n.String()
}
