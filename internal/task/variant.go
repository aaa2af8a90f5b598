package task

import (
	"sort"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/resource"
)

// Variant is a reusable task type, such as "sql_query" or "to_s3". It fixes
// the resource kind, the required and templated attributes and the work;
// each Definition built from it supplies a name and attribute values.
type Variant struct {
	Name        string
	Description string
	Resource    resource.Kind
	// Required attributes must be supplied, statically or deferred.
	Required []string
	// Templates are substituted with `{key}` values before the work runs.
	Templates []string
	// Defaults fill attributes the definition leaves unset.
	Defaults Attributes
	Work     Work
}

// Define builds a Definition named name with static attributes.
func (v *Variant) Define(name string, attrs Attributes) (*Definition, error) {
	return v.DefineDeferred(name, attrs, nil)
}

// MustDefine is Define that panics on error.
func (v *Variant) MustDefine(name string, attrs Attributes) *Definition {
	d, err := v.Define(name, attrs)
	if err != nil {
		panic(err)
	}
	return d
}

// DefineDeferred builds a Definition whose attributes may also be deferred
// expressions. A required attribute satisfied by either form is present.
func (v *Variant) DefineDeferred(name string, attrs Attributes, deferred map[string]config.Expression) (*Definition, error) {
	merged := make(Attributes, len(v.Defaults)+len(attrs))
	for k, val := range v.Defaults {
		merged[k] = val
	}
	for k, val := range attrs {
		merged[k] = val
	}

	var missing []string
	for _, req := range v.Required {
		if _, ok := deferred[req]; ok {
			continue
		}
		if !merged.Has(req) {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &InterfaceError{Task: name, Variant: v.Name, Missing: missing}
	}

	var exprs map[string]config.Expression
	if len(deferred) > 0 {
		exprs = make(map[string]config.Expression, len(deferred))
		for k, e := range deferred {
			exprs[k] = e
		}
	}

	return &Definition{
		Name:      name,
		Resource:  v.Resource,
		Attrs:     merged,
		Deferred:  exprs,
		Templates: append([]string(nil), v.Templates...),
		Work:      v.Work,
		Variant:   v.Name,
	}, nil
}
