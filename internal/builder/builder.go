package builder

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/goliatone/go-kb/internal/node"
)

// Build normalizes a plain argument list into a fragment. Arguments are taken
// in order; see push for the accepted shapes.
func Build(args ...any) node.Fragment {
	content := make(node.Fragment, 0, len(args))
	for _, arg := range args {
		content = push(content, arg)
	}
	return content
}

// Template builds a fragment from template-shaped arguments. Every string is a
// literal segment and every other value is interpolated between the segments.
// Literal text is dedented before use: the smallest indentation among the
// continuation lines is removed from all of them, the first line of the
// template loses its leading whitespace and the last line its trailing
// whitespace.
func Template(parts ...any) node.Fragment {
	literals, values := splitTemplate(parts)
	literals = dedent(literals)

	content := make(node.Fragment, 0, len(literals)+len(values))
	last := len(literals) - 1
	for i, text := range literals {
		if i == 0 {
			text = trimStart(text)
		}
		if i == last {
			text = trimEnd(text)
		}
		if text != "" {
			content = append(content, node.Text(text))
		}
		if i < len(values) {
			content = push(content, values[i])
		}
	}
	return content
}

// splitTemplate separates literal segments from interpolations so that
// len(literals) == len(values)+1. Adjacent strings are joined, adjacent
// values get an empty literal between them.
func splitTemplate(parts []any) ([]string, []any) {
	literals := []string{""}
	values := make([]any, 0, len(parts)/2)
	for _, part := range parts {
		if text, ok := part.(string); ok {
			literals[len(literals)-1] += text
			continue
		}
		values = append(values, part)
		literals = append(literals, "")
	}
	return literals, values
}

func push(content node.Fragment, value any) node.Fragment {
	switch v := value.(type) {
	case nil:
		return content
	case *node.KB:
		if v == nil {
			return content
		}
		return append(content, v.Embed(node.BareLink, nil))
	case node.Node:
		return append(content, v)
	case string:
		return append(content, node.Text(v))
	case bool:
		return append(content, node.Text(strconv.FormatBool(v)))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return append(content, node.Text(fmt.Sprint(v)))
	case []any:
		for _, item := range v {
			content = push(content, item)
		}
		return content
	case []node.Node:
		for _, item := range v {
			content = push(content, item)
		}
		return content
	case []*node.KB:
		for _, item := range v {
			content = push(content, item)
		}
		return content
	case func() any:
		return append(content, deferred(func(context.Context) (any, error) {
			return v(), nil
		}))
	case func() node.Node:
		return append(content, deferred(func(context.Context) (any, error) {
			return v(), nil
		}))
	case func() (any, error):
		return append(content, deferred(func(context.Context) (any, error) {
			return v()
		}))
	case func(context.Context) (any, error):
		return append(content, deferred(v))
	case func(context.Context) (node.Node, error):
		return append(content, deferred(func(ctx context.Context) (any, error) {
			return v(ctx)
		}))
	case []string:
		for _, item := range v {
			content = append(content, node.Text(item))
		}
		return content
	default:
		return pushReflected(content, value)
	}
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// pushReflected covers the shapes the type switch cannot enumerate: any
// sequence is expanded in order and any producer, taking nothing or only a
// context and returning a value with an optional error, is deferred.
func pushReflected(content node.Fragment, value any) node.Fragment {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			content = push(content, rv.Index(i).Interface())
		}
		return content
	case reflect.String:
		return append(content, node.Text(rv.String()))
	case reflect.Func:
		if rv.IsNil() {
			return content
		}
		if !isProducer(rv.Type()) {
			break
		}
		return append(content, deferred(func(ctx context.Context) (any, error) {
			var in []reflect.Value
			if rv.Type().NumIn() == 1 {
				in = []reflect.Value{reflect.ValueOf(&ctx).Elem()}
			}
			out := rv.Call(in)
			if len(out) == 2 && !out[1].IsNil() {
				return nil, out[1].Interface().(error)
			}
			return out[0].Interface(), nil
		}))
	}
	panic(fmt.Sprintf("builder: unsupported content value of type %T", value))
}

func isProducer(fn reflect.Type) bool {
	switch fn.NumIn() {
	case 0:
	case 1:
		if fn.In(0) != contextType {
			return false
		}
	default:
		return false
	}
	switch fn.NumOut() {
	case 1:
		return true
	case 2:
		return fn.Out(1) == errorType
	default:
		return false
	}
}

// deferred wraps a producer so its result is normalized through Build when
// the engine forces it, allowing producers that return producers.
func deferred(produce func(context.Context) (any, error)) *node.Lazy {
	return &node.Lazy{
		Produce: func(ctx context.Context) (node.Node, error) {
			result, err := produce(ctx)
			if err != nil {
				return nil, err
			}
			return Build(result), nil
		},
	}
}

// Lazy defers content production to render time. The result accepts every
// shape Build accepts.
func Lazy(produce func(ctx context.Context) (any, error)) *node.Lazy {
	if produce == nil {
		panic("builder: lazy producer cannot be nil")
	}
	return deferred(produce)
}
