// Package configtree models the backend configuration document: an ordered
// tree of string-keyed objects with untyped leaves. The console never
// validates it against a schema; it round-trips whatever the backend sends.
package configtree

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/elliotchance/orderedmap/v3"
)

// Kind is the variant held by a Node.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is one value in a configuration tree. Object keys keep the order in
// which they were decoded or set.
type Node struct {
	kind  Kind
	b     bool
	num   json.Number
	str   string
	items []*Node
	obj   *orderedmap.OrderedMap[string, *Node]
}

func NewNull() *Node           { return &Node{kind: Null} }
func NewBool(v bool) *Node     { return &Node{kind: Bool, b: v} }
func NewString(v string) *Node { return &Node{kind: String, str: v} }
func NewArray(items ...*Node) *Node {
	return &Node{kind: Array, items: items}
}

// NewNumber wraps a JSON number literal.
func NewNumber(v json.Number) *Node { return &Node{kind: Number, num: v} }

// NewObject creates an empty object.
func NewObject() *Node {
	return &Node{kind: Object, obj: orderedmap.NewOrderedMap[string, *Node]()}
}

// Kind reports the variant. A nil node is Null.
func (n *Node) Kind() Kind {
	if n == nil {
		return Null
	}
	return n.kind
}

func (n *Node) Bool() bool          { return n != nil && n.kind == Bool && n.b }
func (n *Node) Number() json.Number { return n.num }
func (n *Node) Str() string         { return n.str }

// Items returns the elements of an array node.
func (n *Node) Items() []*Node {
	if n.Kind() != Array {
		return nil
	}
	return n.items
}

// Keys returns object keys in order.
func (n *Node) Keys() []string {
	if n.Kind() != Object {
		return nil
	}
	keys := make([]string, 0, n.obj.Len())
	for el := n.obj.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Len returns the number of object members or array items.
func (n *Node) Len() int {
	switch n.Kind() {
	case Object:
		return n.obj.Len()
	case Array:
		return len(n.items)
	}
	return 0
}

// Get returns the member key of an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != Object {
		return nil, false
	}
	return n.obj.Get(key)
}

// Set assigns key on an object node. Existing keys keep their position.
func (n *Node) Set(key string, v *Node) error {
	if n.Kind() != Object {
		return fmt.Errorf("set %q on %s node", key, n.Kind())
	}
	if v == nil {
		v = NewNull()
	}
	n.obj.Set(key, v)
	return nil
}

// Delete removes key from an object node.
func (n *Node) Delete(key string) bool {
	if n.Kind() != Object {
		return false
	}
	return n.obj.Delete(key)
}

// Lookup walks a dotted path split into segments.
func (n *Node) Lookup(path ...string) (*Node, bool) {
	cur := n
	for _, seg := range path {
		next, ok := cur.Get(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// SetPath assigns v at path, creating intermediate objects as needed.
func (n *Node) SetPath(v *Node, path ...string) error {
	if len(path) == 0 {
		return fmt.Errorf("empty path")
	}
	cur := n
	for i, seg := range path[:len(path)-1] {
		next, ok := cur.Get(seg)
		if !ok {
			next = NewObject()
			if err := cur.Set(seg, next); err != nil {
				return err
			}
		}
		if next.Kind() != Object {
			return fmt.Errorf("%s is a %s, not an object", strings.Join(path[:i+1], "."), next.Kind())
		}
		cur = next
	}
	return cur.Set(path[len(path)-1], v)
}

// SplitPath splits a dotted path such as "llm.api_key".
func SplitPath(dotted string) []string {
	if dotted == "" {
		return nil
	}
	return strings.Split(dotted, ".")
}

// Walk calls fn for every non-object node in document order. Arrays are
// reported as a single leaf.
func (n *Node) Walk(fn func(path []string, leaf *Node) error) error {
	return n.walk(nil, fn)
}

func (n *Node) walk(prefix []string, fn func([]string, *Node) error) error {
	if n.Kind() != Object {
		return fn(prefix, n)
	}
	for el := n.obj.Front(); el != nil; el = el.Next() {
		path := append(slices.Clip(prefix), el.Key)
		if err := el.Value.walk(path, fn); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{kind: n.kind, b: n.b, num: n.num, str: n.str}
	switch n.kind {
	case Array:
		out.items = make([]*Node, len(n.items))
		for i, it := range n.items {
			out.items[i] = it.Clone()
		}
	case Object:
		out.obj = orderedmap.NewOrderedMap[string, *Node]()
		for el := n.obj.Front(); el != nil; el = el.Next() {
			out.obj.Set(el.Key, el.Value.Clone())
		}
	}
	return out
}

// Equal reports deep equality. Object key order is not significant.
func (n *Node) Equal(o *Node) bool {
	if n.Kind() != o.Kind() {
		return false
	}
	switch n.Kind() {
	case Null:
		return true
	case Bool:
		return n.b == o.b
	case Number:
		return n.num == o.num
	case String:
		return n.str == o.str
	case Array:
		return slices.EqualFunc(n.items, o.items, (*Node).Equal)
	}
	if n.obj.Len() != o.obj.Len() {
		return false
	}
	for el := n.obj.Front(); el != nil; el = el.Next() {
		other, ok := o.obj.Get(el.Key)
		if !ok || !el.Value.Equal(other) {
			return false
		}
	}
	return true
}

// Display renders a scalar for humans. Containers render as compact JSON.
func (n *Node) Display() string {
	switch n.Kind() {
	case Null:
		return "null"
	case Bool:
		if n.b {
			return "true"
		}
		return "false"
	case Number:
		return n.num.String()
	case String:
		return n.str
	}
	data, err := n.MarshalJSON()
	if err != nil {
		return "<" + n.Kind().String() + ">"
	}
	return string(data)
}

// ParseScalar interprets text typed by an operator: JSON literals (numbers,
// booleans, null, quoted strings, arrays, objects) keep their type,
// anything else becomes a string.
func ParseScalar(text string) *Node {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		var n Node
		if err := n.UnmarshalJSON([]byte(trimmed)); err == nil {
			return &n
		}
	}
	return NewString(text)
}

var secretMarkers = []string{"key", "token", "secret", "password"}

// IsSecretKey reports whether a member name looks like it holds a credential.
func IsSecretKey(key string) bool {
	lower := strings.ToLower(key)
	for _, m := range secretMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Mask returns a copy of n with every secret-looking string leaf replaced.
func (n *Node) Mask(replacement string) *Node {
	out := n.Clone()
	if out.Kind() != Object {
		return out
	}
	_ = out.Walk(func(path []string, leaf *Node) error {
		if len(path) > 0 && leaf.Kind() == String && leaf.str != "" && IsSecretKey(path[len(path)-1]) {
			leaf.str = replacement
		}
		return nil
	})
	return out
}
