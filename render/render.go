// Package render draws the administrative containment graph as Graphviz
// DOT and PNG, for eyeballing what the hierarchy linker produced.
package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/goccy/go-graphviz"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/departments"
	"github.com/georef-ar/go-georef-etl/localities"
	"github.com/georef-ar/go-georef-etl/municipalities"
	"github.com/georef-ar/go-georef-etl/provinces"
)

type RenderOptions struct {
	Provinces      []*provinces.Province
	Departments    []*departments.Department
	Municipalities []*municipalities.Municipality
	Localities     []*localities.Locality
}

// Render builds the containment graph and returns the node count and the
// graph serialized as DOT. Municipalities with no assigned department hang
// off their province directly.
func Render(ctx context.Context, opts *RenderOptions) (uint32, []byte, error) {

	parent_attrs := []func(*graph.VertexProperties){
		graph.VertexAttribute("shape", "ellipse"),
		graph.VertexAttribute("color", "grey"),
		graph.VertexAttribute("fontsize", "10"),
		graph.VertexAttribute("margin", ".5"),
	}

	child_attrs := []func(*graph.VertexProperties){
		graph.VertexAttribute("shape", "box"),
		graph.VertexAttribute("color", "black"),
		graph.VertexAttribute("fontsize", "10"),
		graph.VertexAttribute("margin", ".5"),
	}

	g := graph.New(nodeHash, graph.Directed(), graph.Acyclic())

	count := uint32(0)

	province_nodes := make(map[string]*Node)
	department_nodes := make(map[string]*Node)

	for _, p := range opts.Provinces {

		n := &Node{Kind: georef.ProvinceKind, Code: p.Code, Name: p.Name}
		province_nodes[p.Code] = n

		g.AddVertex(n, parent_attrs...)
		count = count + 1
	}

	for _, d := range opts.Departments {

		n := &Node{Kind: georef.DepartmentKind, Code: d.Code, Name: d.Name}
		department_nodes[d.Code] = n

		g.AddVertex(n, parent_attrs...)
		count = count + 1

		parent, exists := province_nodes[d.ProvinceCode]

		if exists {
			g.AddEdge(parent.String(), n.String())
		}
	}

	for _, m := range opts.Municipalities {

		n := &Node{Kind: georef.MunicipalityKind, Code: m.Code, Name: m.Name}

		g.AddVertex(n, child_attrs...)
		count = count + 1

		parent, exists := department_nodes[m.DepartmentCode]

		if exists {
			g.AddEdge(parent.String(), n.String())
			continue
		}

		province, exists := province_nodes[m.ProvinceCode]

		if exists {
			g.AddEdge(province.String(), n.String())
		}
	}

	for _, l := range opts.Localities {

		n := &Node{Kind: georef.LocalityKind, Code: l.Code, Name: l.Name}

		g.AddVertex(n, child_attrs...)
		count = count + 1

		parent, exists := department_nodes[l.DepartmentCode]

		if exists {
			g.AddEdge(parent.String(), n.String())
		}
	}

	var buf bytes.Buffer
	buf_wr := bufio.NewWriter(&buf)

	err := draw.DOT(g, buf_wr)

	if err != nil {
		return 0, nil, fmt.Errorf("Failed to render graph as dot, %w", err)
	}

	buf_wr.Flush()

	return count, buf.Bytes(), nil
}

// Draw renders DOT bytes produced by `Render` as a PNG image.
func Draw(ctx context.Context, body []byte, wr io.Writer) error {

	gv, err := graphviz.New(ctx)

	if err != nil {
		return fmt.Errorf("Failed to create graphviz instance, %v", err)
	}

	graph, err := graphviz.ParseBytes(body)

	if err != nil {
		return fmt.Errorf("Failed to parse graphviz data, %v", err)
	}

	im, err := gv.RenderImage(ctx, graph)

	if err != nil {
		return fmt.Errorf("Failed to render graphviz data, %v", err)
	}

	err = png.Encode(wr, im)

	if err != nil {
		return fmt.Errorf("Failed to encode PNG image, %v", err)
	}

	return nil
}
