// Package context implements the Context scope stack (spec §3, §4.3):
// scope 0 is the indestructible global scope, scopes 1..N are lexical
// frames pushed by Compound evaluation. The design generalises the
// teacher's compile-time varScope stack (pkg/compiler/vars.go's
// []map[string]varInfo with newScope/dropScope) to a run-time binding
// table keyed by element.Element instead of a stack-slot index.
package context

import "github.com/apica-run/apica-core/pkg/element"

// Context is an ordered stack of scopes, each a name → Element map.
type Context struct {
	scopes []map[string]element.Element
}

// New returns a Context holding only the global scope.
func New() *Context {
	return &Context{scopes: []map[string]element.Element{{}}}
}

// Reset discards every scope but the global one and clears it,
// mirroring load_app's "Context is owned by the Evaluator and reset
// on load_app" (§3).
func (c *Context) Reset() {
	c.scopes = []map[string]element.Element{{}}
}

// Depth reports the current number of scopes, including the global
// one.
func (c *Context) Depth() int { return len(c.scopes) }

// Snapshot returns a read-only copy of every scope's bindings,
// innermost scope last, for the debug CLI's `scopes` dump. Callers
// must not mutate the returned maps.
func (c *Context) Snapshot() []map[string]element.Element {
	out := make([]map[string]element.Element, len(c.scopes))
	copy(out, c.scopes)
	return out
}

// PushScope opens a new lexical frame.
func (c *Context) PushScope() {
	c.scopes = append(c.scopes, map[string]element.Element{})
}

// PopScope closes the innermost lexical frame. It is a no-op at the
// root: the global scope is indestructible for the app's lifetime.
func (c *Context) PopScope() {
	if len(c.scopes) <= 1 {
		return
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// targetIndex resolves which scope index an operation with the given
// global flag applies to.
func (c *Context) targetIndex(global bool) int {
	if global {
		return 0
	}
	return len(c.scopes) - 1
}

// SetElement inserts elem under name in the target scope (global: scope
// 0, else innermost). It fails if name already exists in that scope
// (§4.3 — redeclaration in the same scope is a DeclarationError at the
// call site, not here; this method only reports the collision).
func (c *Context) SetElement(name string, elem element.Element, global bool) bool {
	idx := c.targetIndex(global)
	if _, exists := c.scopes[idx][name]; exists {
		return false
	}
	c.scopes[idx][name] = elem
	return true
}

// GetElement looks up name: global searches scope 0 only, otherwise
// innermost-first across every open scope.
func (c *Context) GetElement(name string, global bool) (element.Element, bool) {
	if global {
		e, ok := c.scopes[0][name]
		return e, ok
	}
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if e, ok := c.scopes[i][name]; ok {
			return e, true
		}
	}
	return element.Element{}, false
}

// MutateElement is get_element_mut collapsed into a single call: it
// finds name the way GetElement does, applies mutate to the current
// Element, writes the result back into the scope it was found in, and
// returns that new Element. Increment/Decrement/Not use this to act on
// a Pointer-resolved binding in place (§4.4).
func (c *Context) MutateElement(name string, global bool, mutate func(element.Element) element.Element) (element.Element, bool) {
	if global {
		e, ok := c.scopes[0][name]
		if !ok {
			return element.Element{}, false
		}
		updated := mutate(e)
		c.scopes[0][name] = updated
		return updated, true
	}
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if e, ok := c.scopes[i][name]; ok {
			updated := mutate(e)
			c.scopes[i][name] = updated
			return updated, true
		}
	}
	return element.Element{}, false
}
