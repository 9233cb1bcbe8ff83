package feedforward

import "fmt"

import "github.com/neurlang/fetalheart/layer"

type edge struct {
	src, dst string
}

// Graph is an editable layer graph used for network surgery. Only graphs
// forming a single chain can be assembled into a FeedforwardNetwork.
type Graph struct {
	layers []layer.Layer
	edges  []edge
}

// NewGraph creates a graph of layers connected in the given order
func NewGraph(layers ...layer.Layer) (*Graph, error) {
	g := new(Graph)
	if err := g.AddLayers(layers...); err != nil {
		return nil, err
	}
	return g, nil
}

// Layers returns the graph layers in insertion order
func (g *Graph) Layers() []layer.Layer {
	return append([]layer.Layer(nil), g.layers...)
}

// GetLayer gets the layer with the given name, or nil
func (g *Graph) GetLayer(name string) layer.Layer {
	for _, l := range g.layers {
		if l.Name() == name {
			return l
		}
	}
	return nil
}

// AddLayers adds layers to the graph and connects them sequentially among
// themselves. They are not connected to the layers already present.
func (g *Graph) AddLayers(layers ...layer.Layer) error {
	for i, l := range layers {
		if g.GetLayer(l.Name()) != nil {
			return fmt.Errorf("%w: %q", ErrDuplicateLayer, l.Name())
		}
		for _, m := range layers[:i] {
			if m.Name() == l.Name() {
				return fmt.Errorf("%w: %q", ErrDuplicateLayer, l.Name())
			}
		}
	}
	for i, l := range layers {
		g.layers = append(g.layers, l)
		if i > 0 {
			g.edges = append(g.edges, edge{layers[i-1].Name(), l.Name()})
		}
	}
	return nil
}

// RemoveLayers removes the named layers and every connection touching them
func (g *Graph) RemoveLayers(names ...string) error {
	var drop = make(map[string]struct{}, len(names))
	for _, name := range names {
		if g.GetLayer(name) == nil {
			return fmt.Errorf("%w: %q", ErrUnknownLayer, name)
		}
		drop[name] = struct{}{}
	}
	var layers []layer.Layer
	for _, l := range g.layers {
		if _, ok := drop[l.Name()]; !ok {
			layers = append(layers, l)
		}
	}
	var edges []edge
	for _, e := range g.edges {
		_, s := drop[e.src]
		_, d := drop[e.dst]
		if !s && !d {
			edges = append(edges, e)
		}
	}
	g.layers, g.edges = layers, edges
	return nil
}

// ConnectLayers connects the output of layer src to the input of layer dst
func (g *Graph) ConnectLayers(src, dst string) error {
	if g.GetLayer(src) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, src)
	}
	if g.GetLayer(dst) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, dst)
	}
	for _, e := range g.edges {
		if e.src == src && e.dst == dst {
			return nil
		}
	}
	g.edges = append(g.edges, edge{src, dst})
	return nil
}

// Outputs lists the names of layers with no outgoing connection
func (g *Graph) Outputs() (o []string) {
	for _, l := range g.layers {
		var has bool
		for _, e := range g.edges {
			if e.src == l.Name() {
				has = true
				break
			}
		}
		if !has {
			o = append(o, l.Name())
		}
	}
	return
}

// Assemble walks the graph from its only source to its only sink and builds the network
func (g *Graph) Assemble() (*FeedforwardNetwork, error) {
	if len(g.layers) == 0 {
		return nil, fmt.Errorf("%w: empty graph", ErrNotChain)
	}
	var next = make(map[string]string, len(g.edges))
	var indegree = make(map[string]int, len(g.layers))
	for _, e := range g.edges {
		if _, ok := next[e.src]; ok {
			return nil, fmt.Errorf("%w: layer %q has several outputs", ErrNotChain, e.src)
		}
		next[e.src] = e.dst
		indegree[e.dst]++
		if indegree[e.dst] > 1 {
			return nil, fmt.Errorf("%w: layer %q has several inputs", ErrNotChain, e.dst)
		}
	}
	var source string
	var sources int
	for _, l := range g.layers {
		if indegree[l.Name()] == 0 {
			source = l.Name()
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("%w: %d unconnected inputs", ErrNotChain, sources)
	}
	var chain []layer.Layer
	for name, ok := source, true; ok; name, ok = next[name] {
		if len(chain) == len(g.layers) {
			return nil, fmt.Errorf("%w: cycle at %q", ErrNotChain, name)
		}
		chain = append(chain, g.GetLayer(name))
	}
	if len(chain) != len(g.layers) {
		return nil, fmt.Errorf("%w: %d of %d layers reachable from %q", ErrNotChain, len(chain), len(g.layers), source)
	}
	return New(chain...)
}
