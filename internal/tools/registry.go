// ABOUTME: Tool registry: registration, schema validation, dispatch, panic isolation
// ABOUTME: Arguments are validated against each tool's schema before its handler runs

package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/gielinor/osrsdex/internal/bestiary"
	"github.com/gielinor/osrsdex/internal/datafile"
	"github.com/gielinor/osrsdex/internal/hiscores"
	"github.com/gielinor/osrsdex/internal/log"
	"github.com/gielinor/osrsdex/internal/prices"
	"github.com/gielinor/osrsdex/internal/types"
	"github.com/gielinor/osrsdex/internal/wiki"
)

// Deps bundles the backends the built-in tools serve from.
type Deps struct {
	Store     *datafile.Store
	Refresher *datafile.Refresher
	Bestiary  *bestiary.Manager
	Wiki      *wiki.Client
	Prices    *prices.Client
	Hiscores  *hiscores.Client
}

// Registry holds the registered tools and their compiled schemas. All
// registration happens during construction; afterwards the registry is
// read-only and safe for concurrent Call and All.
type Registry struct {
	tools   map[string]*Tool
	schemas map[string]*gojsonschema.Schema
}

// New builds a registry with every built-in tool registered.
func New(d *Deps) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]*Tool),
		schemas: make(map[string]*gojsonschema.Schema),
	}

	builtins := []*Tool{
		newSearchIDsTool(d),
		newGetByIDTool(d),
		newGetByIDsTool(d),
		newGetIDRangeTool(d),
		newSearchMonstersTool(d),
		newMonsterInfoTool(d),
		newMonsterDropsTool(d),
		newItemSourcesTool(d),
		newItemPriceTool(d),
		newPlayerStatsTool(d),
		newSearchWikiTool(d),
		newWikiPageTool(d),
		newRefreshDataTool(d),
		newCacheStatsTool(d),
	}
	for _, t := range builtins {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool, compiling its argument schema. A tool registered
// twice replaces the earlier one.
func (r *Registry) Register(t *Tool) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(t.Schema))
	if err != nil {
		return fmt.Errorf("compiling schema for %s: %w", t.Name, err)
	}
	r.tools[t.Name] = t
	r.schemas[t.Name] = schema
	return nil
}

// Get returns a tool by name, or nil.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// All returns every registered tool sorted by name.
func (r *Registry) All() []*Tool {
	out := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call validates args against the tool's schema and runs its handler. A
// panicking handler is contained and reported as a call failure; it must
// never take the process down.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (result any, err error) {
	t := r.tools[name]
	if t == nil {
		return nil, fmt.Errorf("unknown tool %q: %w", name, types.ErrInvalidInput)
	}
	if err := r.validate(name, args); err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("tool %s panicked: %v (args: %v)", name, rec, args)
			err = fmt.Errorf("tool %s failed unexpectedly", name)
		}
	}()

	result, err = t.Execute(ctx, args)
	if err != nil {
		log.Error("tool %s failed: %v (args: %v)", name, err, args)
	}
	return result, err
}

func (r *Registry) validate(name string, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	res, err := r.schemas[name].Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("validating arguments for %s: %w", name, err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid arguments for %s: %s: %w", name, strings.Join(msgs, "; "), types.ErrInvalidInput)
}
