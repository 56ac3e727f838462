package leads

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDescribeFallsBack(t *testing.T) {
	reg := Registry{
		"Broken":  func() (any, error) { return nil, errors.New("cannot introspect") },
		"Panicky": func() (any, error) { panic("boom") },
		"Empty":   nil,
		"Lead":    DefaultRegistry()["Lead"],
	}

	out := reg.Describe()

	require.Len(t, out, 4)
	assert.Equal(t, map[string]string{"title": "Broken"}, out["Broken"])
	assert.Equal(t, map[string]string{"title": "Panicky"}, out["Panicky"])
	assert.Equal(t, map[string]string{"title": "Empty"}, out["Empty"])
	assert.NotEqual(t, map[string]string{"title": "Lead"}, out["Lead"])
}

func TestRegistryNamesSorted(t *testing.T) {
	reg := Registry{"b": nil, "a": nil, "c": nil}
	assert.Equal(t, []string{"a", "b", "c"}, reg.Names())
}

func TestLeadDescriptor(t *testing.T) {
	desc, err := DefaultRegistry()["Lead"]()
	require.NoError(t, err)

	raw, err := json.Marshal(desc)
	require.NoError(t, err)

	var schema struct {
		Title      string                     `json:"title"`
		Type       string                     `json:"type"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &schema))

	assert.Equal(t, "Lead", schema.Title)
	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"name", "email"}, schema.Required)
	assert.Len(t, schema.Properties, 9)

	var email map[string]any
	require.NoError(t, json.Unmarshal(schema.Properties["email"], &email))
	assert.Equal(t, "email", email["format"])

	assert.Contains(t, string(schema.Properties["source"]), `"website"`)
}
