package models

// PropertyType represents the kind of a node-local, host-editable setting.
type PropertyType uint8

const (
	PropertyNumber PropertyType = iota
	PropertyInteger
	PropertyBoolean
	PropertySelect
)

var propertyTypeName = map[PropertyType]string{
	PropertyNumber:  "number",
	PropertyInteger: "integer",
	PropertyBoolean: "boolean",
	PropertySelect:  "select",
}

func (t PropertyType) String() string {
	if name, ok := propertyTypeName[t]; ok {
		return name
	}

	return "unknown"
}

// PropertyTypeList is an ordered list of property kinds, one per property.
type PropertyTypeList []PropertyType

// Clone returns an independent copy of the list.
func (l PropertyTypeList) Clone() PropertyTypeList {
	if l == nil {
		return nil
	}

	out := make(PropertyTypeList, len(l))
	copy(out, l)

	return out
}

// ConfigurationDescriptor describes one enumerated option a node exposes to
// the host beyond its typed properties.
type ConfigurationDescriptor struct {
	Name            string   `json:"name"`
	CurrentValue    string   `json:"current_value"`
	AvailableValues []string `json:"available_values"`
}

