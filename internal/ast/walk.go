package ast

import (
	"fmt"
	"strings"

	reflect "github.com/goccy/go-reflect"
)

const (
	requiredChildTag = "required"
	optionalChildTag = "optional"
)

func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

type childSlot struct {
	field    string
	required bool
	node     Node // nil when absent
}

// childSlots lists the child positions of n in field order.
func childSlots(n Node) []childSlot {
	if isNilNode(n) {
		return nil
	}

	v := reflect.ValueOf(n)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	var slots []childSlot
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("ast")
		if tag == "" {
			continue
		}

		f := v.Field(i)
		if f.Kind() == reflect.Slice {
			for j := 0; j < f.Len(); j++ {
				slots = append(slots, childSlot{
					field:    fmt.Sprintf("%s[%d]", field.Name, j),
					required: true,
					node:     valueToNode(f.Index(j)),
				})
			}
			continue
		}

		slots = append(slots, childSlot{
			field:    field.Name,
			required: tag == requiredChildTag,
			node:     valueToNode(f),
		})
	}
	return slots
}

func valueToNode(v reflect.Value) Node {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
	}
	if n, ok := v.Interface().(Node); ok {
		return n
	}
	return nil
}

// Children returns the present children of n in field order.
func Children(n Node) []Node {
	var children []Node
	for _, slot := range childSlots(n) {
		if slot.node != nil {
			children = append(children, slot.node)
		}
	}
	return children
}

// Walk visits n and its descendants in depth-first pre-order. Children of a node are
// skipped when visit returns false.
func Walk(n Node, visit func(Node) bool) {
	if isNilNode(n) || !visit(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, visit)
	}
}

// Validate checks that root is a Program, that every required child is present, that
// no node appears twice and that no nested Program exists.
func Validate(root Node) error {
	if _, ok := root.(*Program); !ok || isNilNode(root) {
		return fmt.Errorf("%w: root must be a %s", ErrInvalidNode, ProgramType)
	}

	seen := map[Node]bool{}
	var validate func(n Node, path []string) error
	validate = func(n Node, path []string) error {
		if seen[n] {
			return fmt.Errorf("%w: %s appears more than once at %s", ErrInvalidNode, n.NodeType(), strings.Join(path, "."))
		}
		seen[n] = true

		if _, ok := n.(*Program); ok && len(path) > 1 {
			return fmt.Errorf("%w: nested %s at %s", ErrInvalidNode, ProgramType, strings.Join(path, "."))
		}

		for _, slot := range childSlots(n) {
			childPath := append(path[:len(path):len(path)], slot.field)
			if slot.node == nil {
				if slot.required {
					return fmt.Errorf("%w: %s is missing at %s", ErrInvalidNode, slot.field, strings.Join(childPath, "."))
				}
				continue
			}
			if err := validate(slot.node, childPath); err != nil {
				return err
			}
		}
		return nil
	}
	return validate(root, []string{string(ProgramType)})
}
