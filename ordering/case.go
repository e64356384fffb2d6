package ordering

import "testing"

// Case is a named test function with its priority annotations.
type Case struct {
	Name       string
	Func       func(t *testing.T)
	priorities []int
}

var _ TestCase = (*Case)(nil)

// CaseOption configures a Case.
type CaseOption func(*Case)

// Priority attaches a priority annotation. When passed more than once, the
// last one takes effect.
func Priority(n int) CaseOption {
	return func(c *Case) { c.priorities = append(c.priorities, n) }
}

// NewCase creates a Case.
func NewCase(name string, fn func(t *testing.T), opts ...CaseOption) *Case {
	c := &Case{Name: name, Func: fn}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MethodName returns the case name.
func (c *Case) MethodName() string { return c.Name }

// Priorities returns the attached annotations in the order they were added.
func (c *Case) Priorities() []int {
	out := make([]int, len(c.priorities))
	copy(out, c.priorities)
	return out
}

// Run orders cases and runs each one as a subtest, in that order. Subtests
// run sequentially unless a case calls t.Parallel itself. Cases with a nil
// Func are skipped.
func Run(t *testing.T, cases ...*Case) {
	t.Helper()
	for _, c := range OrderTestCases(cases) {
		fn := c.Func
		t.Run(c.Name, func(t *testing.T) {
			if fn == nil {
				t.Skip("no test function")
			}
			fn(t)
		})
	}
}
