package ordering

import (
	"reflect"
	"strings"
	"testing"
)

// PrioritizedSuite is implemented by suites that annotate their Test*
// methods. Keys are method names.
type PrioritizedSuite interface {
	TestPriorities() map[string][]int
}

var testFuncType = reflect.TypeOf(func(*testing.T) {})

// SuiteCases returns one Case per exported method of suite whose name starts
// with "Test" and whose signature is func(*testing.T). TestPriorities itself
// is not a case. The result is in method-set order; use Run to order it.
func SuiteCases(suite any) []*Case {
	if suite == nil {
		return []*Case{}
	}

	var priorities map[string][]int
	if ps, ok := suite.(PrioritizedSuite); ok {
		priorities = ps.TestPriorities()
	}

	v := reflect.ValueOf(suite)
	typ := v.Type()
	cases := make([]*Case, 0, typ.NumMethod())
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		if !strings.HasPrefix(m.Name, "Test") {
			continue
		}
		fn := v.Method(i)
		if fn.Type() != testFuncType {
			continue
		}

		c := &Case{
			Name: m.Name,
			Func: fn.Interface().(func(*testing.T)),
		}
		c.priorities = append(c.priorities, priorities[m.Name]...)
		cases = append(cases, c)
	}
	return cases
}

// RunSuite runs the Test* methods of suite in priority order.
func RunSuite(t *testing.T, suite any) {
	t.Helper()
	Run(t, SuiteCases(suite)...)
}
