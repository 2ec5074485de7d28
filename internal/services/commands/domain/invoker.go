package domain

import (
	"context"
	"fmt"
	"sort"
)

// Context carries everything a processor needs for one invocation: the
// decoded operation, its references, the resolved target objects, and the
// command payloads. It is built per invocation and never persisted.
type Context struct {
	Operation   string
	Refs        []Ref
	HTMLPayload string
	TextPayload string

	resolved map[Ref]any
}

// FirstRef returns the first reference of the given type in line order.
func (c *Context) FirstRef(refType string) (Ref, bool) {
	for _, ref := range c.Refs {
		if ref.Type == refType {
			return ref, true
		}
	}
	return Ref{}, false
}

// Object returns the resolved target for a reference, or nil when the
// reference did not resolve to a live object.
func (c *Context) Object(ref Ref) any {
	if c == nil || c.resolved == nil {
		return nil
	}
	return c.resolved[ref]
}

// Processor implements the effect of one operation against resolved targets.
type Processor interface {
	// Operation names the command operation this processor handles. The
	// match against parsed lines is exact and case-sensitive.
	Operation() string
	// Apply executes the command. Errors propagate unchanged to the
	// invoking job, which owns logging and drop policy.
	Apply(ctx context.Context, cctx *Context) (Result, error)
}

// Registry is the processor lookup table, built once at startup from a
// static list of processors.
type Registry struct {
	processors map[string]Processor
}

// NewRegistry builds a registry from the given processors.
func NewRegistry(processors ...Processor) (*Registry, error) {
	r := &Registry{processors: make(map[string]Processor, len(processors))}
	for _, processor := range processors {
		if err := r.Register(processor); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds one processor. Registering two processors for the same
// operation is a wiring mistake and fails.
func (r *Registry) Register(processor Processor) error {
	if processor == nil {
		return fmt.Errorf("processor is required")
	}
	operation := processor.Operation()
	if operation == "" {
		return fmt.Errorf("processor operation name is required")
	}
	if _, exists := r.processors[operation]; exists {
		return fmt.Errorf("processor already registered for operation %q", operation)
	}
	r.processors[operation] = processor
	return nil
}

// Lookup returns the processor registered for the operation, or nil.
func (r *Registry) Lookup(operation string) Processor {
	if r == nil {
		return nil
	}
	return r.processors[operation]
}

// Operations lists registered operation names in sorted order.
func (r *Registry) Operations() []string {
	if r == nil {
		return nil
	}
	operations := make([]string, 0, len(r.processors))
	for operation := range r.processors {
		operations = append(operations, operation)
	}
	sort.Strings(operations)
	return operations
}

// Resolver resolves one typed object reference to a live domain object.
// A nil object with a nil error means the target does not exist, which is
// an expected steady-state outcome rather than a failure.
type Resolver interface {
	Resolve(ctx context.Context, refType string, id string) (any, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, refType string, id string) (any, error)

// Resolve calls the wrapped function.
func (f ResolverFunc) Resolve(ctx context.Context, refType string, id string) (any, error) {
	return f(ctx, refType, id)
}

// ResolverRegistry keys resolvers by reference type. Reference types without
// a registered resolver pass through unresolved.
type ResolverRegistry struct {
	resolvers map[string]Resolver
}

// NewResolverRegistry builds an empty resolver registry.
func NewResolverRegistry() *ResolverRegistry {
	return &ResolverRegistry{resolvers: make(map[string]Resolver)}
}

// RegisterResolver binds a resolver to one reference type.
func (r *ResolverRegistry) RegisterResolver(refType string, resolver Resolver) error {
	if refType == "" {
		return fmt.Errorf("resolver reference type is required")
	}
	if resolver == nil {
		return fmt.Errorf("resolver is required")
	}
	if _, exists := r.resolvers[refType]; exists {
		return fmt.Errorf("resolver already registered for type %q", refType)
	}
	r.resolvers[refType] = resolver
	return nil
}

// Lookup returns the resolver for a reference type, or nil.
func (r *ResolverRegistry) Lookup(refType string) Resolver {
	if r == nil {
		return nil
	}
	return r.resolvers[refType]
}

// Invoker dispatches one parsed operation line to its registered processor.
type Invoker struct {
	registry  *Registry
	resolvers *ResolverRegistry
}

// NewInvoker builds an invoker over a processor registry and resolvers.
func NewInvoker(registry *Registry, resolvers *ResolverRegistry) *Invoker {
	return &Invoker{registry: registry, resolvers: resolvers}
}

// Invoke parses the operation line, resolves its references, and calls the
// matching processor. A malformed line is an error; an unknown operation is
// NoAction. Processor errors propagate unchanged and the invoker never
// retries.
func (i *Invoker) Invoke(ctx context.Context, line string, htmlPayload string, textPayload string) (Result, error) {
	if i == nil || i.registry == nil {
		return Result{}, ErrInvokerNotConfigured
	}
	operation, refs, err := ParseLine(line)
	if err != nil {
		return Result{}, err
	}

	processor := i.registry.Lookup(operation)
	if processor == nil {
		return NoAction(), nil
	}

	resolved := make(map[Ref]any)
	for _, ref := range refs {
		resolver := i.resolvers.Lookup(ref.Type)
		if resolver == nil {
			continue
		}
		object, err := resolver.Resolve(ctx, ref.Type, ref.ID)
		if err != nil {
			return Result{}, fmt.Errorf("resolve %s:%s: %w", ref.Type, ref.ID, err)
		}
		if object != nil {
			resolved[ref] = object
		}
	}

	cctx := &Context{
		Operation:   operation,
		Refs:        refs,
		HTMLPayload: htmlPayload,
		TextPayload: textPayload,
		resolved:    resolved,
	}
	return processor.Apply(ctx, cctx)
}
