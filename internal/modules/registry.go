package modules

import "sort"

// Registry holds the daemon's active modules by name.
type Registry struct {
	modules map[string]Module
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a module. Registering the same name twice replaces the
// earlier module but keeps its position.
func (r *Registry) Register(module Module) {
	name := module.Name()
	if _, exists := r.modules[name]; !exists {
		r.order = append(r.order, name)
	}
	r.modules[name] = module
}

// Get looks a module up by name.
func (r *Registry) Get(name string) (Module, bool) {
	module, ok := r.modules[name]
	return module, ok
}

// Names lists registered module names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// All returns the registered modules in registration order.
func (r *Registry) All() []Module {
	all := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.modules[name])
	}
	return all
}

// SortedNames lists registered module names alphabetically.
func (r *Registry) SortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}
