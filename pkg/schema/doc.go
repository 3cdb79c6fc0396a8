// Package schema describes the configurable fields of workflow nodes and
// validates values against them.
//
// Field schemas are static data: a Registry maps (app, resource, operation)
// and (app, trigger) to ordered field lists. A field may be conditional on its
// siblings through DisplayOptions:
//
//	schema.FieldSchema{
//	    Name:     "channel",
//	    Type:     schema.TypeString,
//	    Required: true,
//	    DisplayOptions: &schema.DisplayOptions{
//	        Show: map[string][]any{"target": {"channel"}},
//	    },
//	}
//
// Inactive fields are never reported, whatever stale value they hold.
//
//	res := schema.ValidateField(field, config["channel"], config)
//	if !res.Valid {
//	    // res.Kind is MissingRequiredField, InvalidFieldType or OutOfRange
//	}
//
// Catalogs load from YAML or JSON with LoadCatalog.
package schema
