// Package ordering runs test cases in an explicit priority order.
//
// Each case carries zero or more priority annotations. The last annotation
// wins; an unannotated case has priority 0. Cases run in ascending priority,
// and cases sharing a priority run in case-insensitive name order.
//
//	func TestCheckout(t *testing.T) {
//	    ordering.Run(t,
//	        ordering.NewCase("CreateCart", testCreateCart, ordering.Priority(1)),
//	        ordering.NewCase("AddItem", testAddItem, ordering.Priority(2)),
//	        ordering.NewCase("Health", testHealth),
//	    )
//	}
//
// Suites expose their cases as Test* methods and declare priorities through
// a TestPriorities method:
//
//	func (s *CheckoutSuite) TestPriorities() map[string][]int {
//	    return map[string][]int{"TestCreateCart": {1}, "TestAddItem": {2}}
//	}
//
//	func TestCheckoutSuite(t *testing.T) { ordering.RunSuite(t, &CheckoutSuite{}) }
package ordering
