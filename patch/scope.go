package patch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nordsil/libpatch/liberty"
)

// ScopeMatchError reports a path prefix that yielded no matches while
// the caller required one. Path holds the prefix up to and including the
// selector that failed.
type ScopeMatchError struct {
	Path   []Selector
	Reason string
}

func (e ScopeMatchError) Error() string {
	var summary []string
	for _, selector := range e.Path {
		summary = append(summary, describeSelector(selector))
	}
	return fmt.Sprintf("scope match failed at path [%s]: %s", strings.Join(summary, " -> "), e.Reason)
}

// ResolveScope walks the selector path anchored at the root: at each
// step the frontier is replaced by the matching direct child groups of
// the previous frontier. With requireMatch set, an empty frontier at any
// prefix is a ScopeMatchError; otherwise the result is simply empty.
func ResolveScope(root *liberty.Root, scope Scope, requireMatch bool) ([]*liberty.Group, error) {
	if len(scope.Path) == 0 {
		if requireMatch {
			return nil, ScopeMatchError{Reason: "scope path is empty"}
		}
		return nil, nil
	}
	frontier := []liberty.Node{root}
	for i, selector := range scope.Path {
		var next []liberty.Node
		for _, node := range frontier {
			for _, child := range childGroups(node) {
				ok, err := matchesSelector(child, selector)
				if err != nil {
					return nil, err
				}
				if ok {
					next = append(next, child)
				}
			}
		}
		if len(next) == 0 {
			if requireMatch {
				return nil, ScopeMatchError{
					Path:   scope.Path[:i+1],
					Reason: describeSelectorFailure(selector),
				}
			}
			return nil, nil
		}
		frontier = next
	}
	groups := make([]*liberty.Group, 0, len(frontier))
	for _, node := range frontier {
		groups = append(groups, node.(*liberty.Group))
	}
	return groups, nil
}

// FindGroupsByName collects every group named name in the subtree rooted
// at node, node itself included.
func FindGroupsByName(node liberty.Node, name string) []*liberty.Group {
	var matches []*liberty.Group
	stack := []liberty.Node{node}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if g, ok := current.(*liberty.Group); ok && g.Name == name {
			matches = append(matches, g)
		}
		for _, child := range childGroups(current) {
			stack = append(stack, child)
		}
	}
	return matches
}

// GroupHasAttribute reports whether the group directly contains an
// attribute with the key whose flattened value matches the pattern.
func GroupHasAttribute(group *liberty.Group, key string, pattern *Pattern) (bool, error) {
	for _, child := range group.Children {
		attr, ok := child.(*liberty.Attribute)
		if !ok || attr.Key != key {
			continue
		}
		matched, err := pattern.Match(liberty.FlattenTokens(attr.Raw))
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func matchesSelector(group *liberty.Group, selector Selector) (bool, error) {
	if !selector.Group.IsZero() {
		ok, err := selector.Group.Match(group.Name)
		if err != nil || !ok {
			return false, err
		}
	}
	if !selector.Name.IsZero() {
		if len(group.Args) == 0 {
			return false, nil
		}
		ok, err := selector.Name.Match(group.ArgName())
		if err != nil || !ok {
			return false, err
		}
	}
	if !selector.Args.IsZero() {
		if len(group.Args) == 0 {
			return false, nil
		}
		ok, err := selector.Args.Match(liberty.FlattenTokens(group.Args))
		if err != nil || !ok {
			return false, err
		}
	}
	for key, pattern := range selector.Attributes {
		ok, err := GroupHasAttribute(group, key, pattern)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func childGroups(node liberty.Node) []*liberty.Group {
	var children []liberty.Node
	switch n := node.(type) {
	case *liberty.Root:
		children = n.Children
	case *liberty.Group:
		children = n.Children
	default:
		return nil
	}
	var groups []*liberty.Group
	for _, child := range children {
		if g, ok := child.(*liberty.Group); ok {
			groups = append(groups, g)
		}
	}
	return groups
}

func describeSelector(selector Selector) string {
	if !selector.Group.IsZero() {
		summary := selector.Group.String()
		if !selector.Name.IsZero() {
			summary = fmt.Sprintf("%s(%s)", summary, selector.Name)
		}
		return summary
	}
	return describeClauses(selector)
}

func describeSelectorFailure(selector Selector) string {
	clauses := describeClauses(selector)
	if clauses == "{}" {
		return "no child groups matched selector"
	}
	return "no child groups matched selector filters: " + clauses
}

func describeClauses(selector Selector) string {
	var parts []string
	if !selector.Group.IsZero() {
		parts = append(parts, "group="+selector.Group.String())
	}
	if !selector.Name.IsZero() {
		parts = append(parts, "name="+selector.Name.String())
	}
	if !selector.Args.IsZero() {
		parts = append(parts, "args="+selector.Args.String())
	}
	if len(selector.Attributes) > 0 {
		keys := make([]string, 0, len(selector.Attributes))
		for key := range selector.Attributes {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var attrs []string
		for _, key := range keys {
			attrs = append(attrs, fmt.Sprintf("%s=%s", key, selector.Attributes[key]))
		}
		parts = append(parts, "attributes={"+strings.Join(attrs, ", ")+"}")
	}
	if len(parts) == 0 {
		return "{}"
	}
	return strings.Join(parts, ", ")
}
