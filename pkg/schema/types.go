package schema

// FieldType is the declared type of a configurable field.
type FieldType string

const (
	TypeString          FieldType = "string"
	TypeText            FieldType = "text"
	TypeNumber          FieldType = "number"
	TypeBoolean         FieldType = "boolean"
	TypeOptions         FieldType = "options"
	TypeMultiOptions    FieldType = "multiOptions"
	TypeJSON            FieldType = "json"
	TypeDateTime        FieldType = "dateTime"
	TypeFixedCollection FieldType = "fixedCollection"
	TypeCollection      FieldType = "collection"
	TypeColor           FieldType = "color"
	TypeHidden          FieldType = "hidden"
	TypeNotice          FieldType = "notice"
)

// Option is one entry of an options/multiOptions enumeration.
type Option struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// DisplayOptions makes a field's relevance conditional on sibling values.
// Show: every listed sibling must hold one of its allowed values.
// Hide: the field is hidden when any listed sibling holds one of its values.
type DisplayOptions struct {
	Show map[string][]any `json:"show,omitempty" yaml:"show,omitempty"`
	Hide map[string][]any `json:"hide,omitempty" yaml:"hide,omitempty"`
}

// FieldSchema declares one configurable value of a node.
type FieldSchema struct {
	Name        string    `json:"name" yaml:"name"`
	DisplayName string    `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Type        FieldType `json:"type" yaml:"type"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`

	// Min and Max bound number fields when set.
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`

	// Pattern is a regular expression string fields must match.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	Placeholder    string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	DisplayOptions *DisplayOptions `json:"displayOptions,omitempty" yaml:"displayOptions,omitempty"`
}

// Label returns the display name, falling back to the field name.
func (f FieldSchema) Label() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Name
}

// AuthType names how an app authenticates.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "apiKey"
	AuthOAuth2 AuthType = "oauth2"
)

// Operation is one action an app resource supports.
type Operation struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldSchema `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Resource groups operations of an app (e.g. "message", "channel").
type Resource struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Operations []Operation `json:"operations,omitempty" yaml:"operations,omitempty"`
}

// TriggerSchema describes an event source of an app.
type TriggerSchema struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldSchema `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// AppSchema is the catalog entry of one integrated app.
type AppSchema struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Category  string          `json:"category,omitempty" yaml:"category,omitempty"`
	Auth      AuthType        `json:"auth,omitempty" yaml:"auth,omitempty"`
	Triggers  []TriggerSchema `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	Resources []Resource      `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// SplitRequired partitions fields into required and optional, keeping order.
func SplitRequired(fields []FieldSchema) (required, optional []FieldSchema) {
	for _, f := range fields {
		if f.Required {
			required = append(required, f)
		} else {
			optional = append(optional, f)
		}
	}
	return required, optional
}
