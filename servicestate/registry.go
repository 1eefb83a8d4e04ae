package servicestate

import (
	"fmt"
	"sort"

	"github.com/next-trace/scg-service-state/contract/action"
	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

// RouteName pairs a service route with the logical name it is bound under.
type RouteName struct {
	Route string
	Name  string
}

// Routes is an ordered set of bindings for BindAll.
type Routes []RouteName

// Route binds a single route under its own name.
func Route(route string) Routes { return Routes{{Route: route, Name: route}} }

// RouteList binds each route under its own name.
func RouteList(routes ...string) Routes {
	out := make(Routes, 0, len(routes))
	for _, r := range routes {
		out = append(out, RouteName{Route: r, Name: r})
	}

	return out
}

// RouteMap binds each route under an explicit name. Use it for routes that are
// not valid identifiers, such as templated paths.
func RouteMap(m map[string]string) Routes {
	out := make(Routes, 0, len(m))
	for r, n := range m {
		out = append(out, RouteName{Route: r, Name: n})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })

	return out
}

// Bundles maps logical names to bound services.
type Bundles map[string]*Bundle

// BindAll binds every route. The first failure aborts the whole registry.
func BindAll(r service.Resolver, routes Routes, cfg Config) (Bundles, error) {
	out := make(Bundles, len(routes))

	for _, rn := range routes {
		b, err := Bind(r, rn.Route, rn.Name, cfg)
		if err != nil {
			return nil, err
		}

		if _, dup := out[b.Name]; dup {
			return nil, fmt.Errorf("bind %s as %s: %w", rn.Route, b.Name, serr.ErrDuplicateName)
		}

		out[b.Name] = b
	}

	return out, nil
}

// Root is the combined state of several bound services, keyed by logical name.
type Root map[string]State

// InitialState returns the initial state of every bundle.
func (bs Bundles) InitialState() Root {
	root := make(Root, len(bs))
	for name, b := range bs {
		root[name] = b.InitialState()
	}

	return root
}

// Reducer combines the reducers of every bundle. Each call returns a new Root;
// entries without a bundle are carried over untouched.
func (bs Bundles) Reducer() func(root Root, a action.Action) Root {
	return func(root Root, a action.Action) Root {
		next := make(Root, len(root)+len(bs))
		for name, s := range root {
			next[name] = s
		}

		for name, b := range bs {
			prev, ok := root[name]
			if !ok {
				prev = b.InitialState()
			}

			next[name] = b.Reducer(prev, a)
		}

		return next
	}
}
