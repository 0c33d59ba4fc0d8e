package evaluator

import (
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// maxInspectDepth is how deep nested arrays and objects are printed before they are
// abbreviated.
const maxInspectDepth = 2

// format renders v the way console.log does. Strings are printed without quotes when raw
// is true.
func format(v goja.Value, raw bool) string {
	if v == nil {
		return "undefined"
	}
	if s, ok := v.Export().(string); ok && raw {
		return s
	}
	return inspect(v, 0)
}

func inspect(v goja.Value, depth int) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		if s, ok := v.Export().(string); ok {
			return quote(s)
		}
		return v.String()
	}

	if _, ok := goja.AssertFunction(v); ok {
		name := obj.Get("name")
		if name == nil || name.String() == "" {
			return "[Function (anonymous)]"
		}
		return "[Function: " + name.String() + "]"
	}

	switch obj.ClassName() {
	case "Array":
		if depth > maxInspectDepth {
			return "[Array]"
		}
		length := obj.Get("length").ToInteger()
		if length == 0 {
			return "[]"
		}
		elements := make([]string, length)
		for i := range elements {
			elements[i] = inspect(obj.Get(strconv.Itoa(i)), depth+1)
		}
		return "[ " + strings.Join(elements, ", ") + " ]"

	case "Object":
		if depth > maxInspectDepth {
			return "[Object]"
		}
		keys := obj.Keys()
		if len(keys) == 0 {
			return "{}"
		}
		properties := make([]string, len(keys))
		for i, key := range keys {
			properties[i] = key + ": " + inspect(obj.Get(key), depth+1)
		}
		return "{ " + strings.Join(properties, ", ") + " }"

	default:
		return obj.String()
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return "'" + s + "'"
}
