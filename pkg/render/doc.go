// Package render draws weighted graphs as Graphviz diagrams.
//
// [ToDOT] turns a netgraph.Graph into DOT source with every node pinned at
// its (x, y) position, so the picture matches the coordinates stored in the
// graph document. Options highlight a spanning tree or the flow left on the
// edges by a max-flow run:
//
//	dot := render.ToDOT(g, render.Options{MST: res.Edges, Undirected: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [RenderSVG] lays the DOT out with neato, which honours pinned positions,
// using the WebAssembly build of Graphviz bundled by go-graphviz, so no
// system Graphviz install is needed.
package render
