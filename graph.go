package canister

// DependencyGraph records which constructible types depend on which.
// Validate builds one from constructor parameter types; it can also be
// populated by hand for composition-time analysis.
type DependencyGraph struct {
	nodes map[string]*node
	order []string // Preserve insertion order
}

type node struct {
	name         string
	dependencies []string
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*node),
		order: make([]string, 0),
	}
}

// AddNode adds a node with its dependencies. Re-adding a node replaces its
// dependency list but keeps its original position.
func (g *DependencyGraph) AddNode(name string, dependencies []string) {
	if _, exists := g.nodes[name]; !exists {
		g.order = append(g.order, name)
	}

	g.nodes[name] = &node{
		name:         name,
		dependencies: dependencies,
	}
}

// HasNode checks if a node exists in the graph.
func (g *DependencyGraph) HasNode(name string) bool {
	_, ok := g.nodes[name]

	return ok
}

// Dependencies returns the dependency names for a node.
func (g *DependencyGraph) Dependencies(name string) []string {
	if node, ok := g.nodes[name]; ok {
		return node.dependencies
	}

	return nil
}

// TopologicalSort returns nodes in dependency order: every node appears
// after its dependencies. Nodes without dependencies keep insertion order.
// Returns the cycle chain as an error if the graph is cyclic.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	result := make([]string, 0, len(g.nodes))

	for _, name := range g.order {
		if err := g.visit(name, visited, visiting, nil, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// visit performs DFS traversal, tracking the path for cycle reporting.
func (g *DependencyGraph) visit(name string, visited, visiting map[string]bool, path []string, result *[]string) error {
	if visited[name] {
		return nil
	}

	if visiting[name] {
		return ErrAutowireCycle(append(path, name))
	}

	node := g.nodes[name]
	if node == nil {
		// Dependency satisfied outside the graph, skip.
		return nil
	}

	visiting[name] = true
	path = append(path, name)

	for _, dep := range node.dependencies {
		if err := g.visit(dep, visited, visiting, path, result); err != nil {
			return err
		}
	}

	visiting[name] = false
	visited[name] = true
	*result = append(*result, name)

	return nil
}
