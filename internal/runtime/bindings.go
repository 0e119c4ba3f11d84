package runtime

// Bindings is the temporary rule environment mutated by actions.
// Values are already rendered text; lookups check bindings before the grammar.
type Bindings interface {
	Lookup(name string) (string, bool)
	// Push binds name to value ([name:rule]).
	Push(name, value string)
	// Pop handles [name:POP]. Popping an unbound name is a no-op.
	Pop(name string)
	// Reset clears every binding. Called at the start of each Flatten.
	Reset()
	Len() int
}

// flatBindings overwrite on push and delete on pop: pushing a name twice loses
// the first value, and a single pop removes the binding entirely.
type flatBindings map[string]string

// NewFlatBindings returns the default overwrite/delete environment.
func NewFlatBindings() Bindings {
	return flatBindings{}
}

func (b flatBindings) Lookup(name string) (string, bool) {
	v, ok := b[name]
	return v, ok
}

func (b flatBindings) Push(name, value string) {
	b[name] = value
}

func (b flatBindings) Pop(name string) {
	delete(b, name)
}

func (b flatBindings) Reset() {
	clear(b)
}

func (b flatBindings) Len() int {
	return len(b)
}

// stackedBindings keep a stack per name: pop restores the previous value.
type stackedBindings map[string][]string

// NewStackedBindings returns an environment where [name:POP] restores the
// value bound before the most recent push.
func NewStackedBindings() Bindings {
	return stackedBindings{}
}

func (b stackedBindings) Lookup(name string) (string, bool) {
	stack := b[name]
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1], true
}

func (b stackedBindings) Push(name, value string) {
	b[name] = append(b[name], value)
}

func (b stackedBindings) Pop(name string) {
	stack := b[name]
	switch len(stack) {
	case 0:
	case 1:
		delete(b, name)
	default:
		b[name] = stack[:len(stack)-1]
	}
}

func (b stackedBindings) Reset() {
	clear(b)
}

func (b stackedBindings) Len() int {
	return len(b)
}
