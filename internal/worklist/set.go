package worklist

type Set[T comparable] map[T]struct{}

func NewSet[T comparable]() Set[T] {
	return make(Set[T])
}

func (s Set[T]) Add(item T) {
	s[item] = struct{}{}
}

func (s Set[T]) Contains(item T) bool {
	_, exists := s[item]
	return exists
}

func (s Set[T]) Remove(element T) {
	delete(s, element)
}

func (s Set[T]) Size() int {
	return len(s)
}

// Dedupe returns items with duplicates removed, preserving first-seen order.
// The input slice is not mutated.
func Dedupe[T comparable](items []T) []T {
	seen := NewSet[T]()
	result := make([]T, 0, len(items))
	for _, item := range items {
		if seen.Contains(item) {
			continue
		}
		seen.Add(item)
		result = append(result, item)
	}
	return result
}
