package leads

import (
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"
)

// DescriptorFunc produces the machine-readable description of one shape.
type DescriptorFunc func() (any, error)

// Registry maps shape names to their descriptor functions.
type Registry map[string]DescriptorFunc

// DefaultRegistry lists every shape the service accepts.
func DefaultRegistry() Registry {
	return Registry{
		"Lead": reflectDescriptor("Lead", &Lead{}),
	}
}

// Describe evaluates every descriptor. A descriptor that fails or panics is
// replaced by {"title": name} so no shape is omitted.
func (r Registry) Describe() map[string]any {
	out := make(map[string]any, len(r))
	for _, name := range r.Names() {
		desc, err := safeDescribe(r[name])
		if err != nil || desc == nil {
			desc = map[string]string{"title": name}
		}
		out[name] = desc
	}
	return out
}

// Names returns the registered shape names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func safeDescribe(fn DescriptorFunc) (desc any, err error) {
	if fn == nil {
		return nil, fmt.Errorf("leads: nil descriptor")
	}
	defer func() {
		if rec := recover(); rec != nil {
			desc, err = nil, fmt.Errorf("leads: descriptor panicked: %v", rec)
		}
	}()
	return fn()
}

func reflectDescriptor(title string, shape any) DescriptorFunc {
	return func() (any, error) {
		reflector := &jsonschema.Reflector{
			Anonymous:                  true,
			DoNotReference:             true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  true,
			RequiredFromJSONSchemaTags: true,
		}
		schema := reflector.Reflect(shape)
		if schema == nil {
			return nil, fmt.Errorf("leads: no schema for %s", title)
		}
		schema.Version = ""
		schema.Title = title
		return schema, nil
	}
}
