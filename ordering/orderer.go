package ordering

import (
	"sort"
	"strings"
)

// TestCase is anything the orderer can place: a named test method and the
// priority annotations attached to it, in declaration order.
type TestCase interface {
	MethodName() string
	Priorities() []int
}

// Orderer decides the execution order of a set of test cases.
type Orderer interface {
	Name() string
	Order(cases []TestCase) []TestCase
}

// PriorityOrderer orders cases by priority, then by name.
type PriorityOrderer struct{}

var _ Orderer = PriorityOrderer{}

// NewPriorityOrderer creates a new PriorityOrderer.
func NewPriorityOrderer() PriorityOrderer {
	return PriorityOrderer{}
}

// Name returns the orderer name.
func (PriorityOrderer) Name() string { return "priority" }

// Order returns cases in priority order.
func (PriorityOrderer) Order(cases []TestCase) []TestCase {
	return OrderTestCases(cases)
}

// PriorityOf returns the effective priority of tc: the last annotation, or
// 0 when there is none.
func PriorityOf(tc TestCase) int {
	priority := 0
	for _, p := range tc.Priorities() {
		priority = p
	}
	return priority
}

// OrderTestCases buckets cases by priority, visits the buckets in ascending
// order and sorts each bucket by case-insensitive method name. The input is
// not modified. Names equal up to case keep their input order.
func OrderTestCases[T TestCase](cases []T) []T {
	buckets := make(map[int][]T)
	for _, tc := range cases {
		p := PriorityOf(tc)
		buckets[p] = append(buckets[p], tc)
	}

	keys := make([]int, 0, len(buckets))
	for p := range buckets {
		keys = append(keys, p)
	}
	sort.Ints(keys)

	ordered := make([]T, 0, len(cases))
	for _, p := range keys {
		bucket := buckets[p]
		sort.SliceStable(bucket, func(i, j int) bool {
			return strings.ToLower(bucket[i].MethodName()) < strings.ToLower(bucket[j].MethodName())
		})
		ordered = append(ordered, bucket...)
	}
	return ordered
}
