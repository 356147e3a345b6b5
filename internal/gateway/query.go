package gateway

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

type Param struct {
	Name  string
	Value any
}

// Query keeps parameters in insertion order. Empty strings and nil values are
// dropped when encoding.
type Query []Param

func (q Query) Add(name string, value any) Query {
	return append(q, Param{Name: name, Value: value})
}

func (q Query) Encode() (url.Values, error) {
	values := url.Values{}
	for _, p := range q {
		if isEmpty(p.Value) {
			continue
		}

		styled, err := runtime.StyleParamWithLocation("form", true, p.Name, runtime.ParamLocationQuery, p.Value)
		if err != nil {
			return nil, fmt.Errorf("encode query param %s: %w", p.Name, err)
		}

		parsed, err := url.ParseQuery(styled)
		if err != nil {
			return nil, fmt.Errorf("parse query param %s: %w", p.Name, err)
		}
		for k, vs := range parsed {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
	}
	return values, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	}
	return false
}
