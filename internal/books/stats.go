package books

// CategoryCount is one bar of the dashboard chart.
type CategoryCount struct {
	Name  string
	Count int
}

// CategoryDistribution counts books per category name, preserving the
// order categories are first seen in the list. Books without a category
// expansion land in an "Unknown" bucket.
func CategoryDistribution(list []Book) []CategoryCount {
	index := map[string]int{}
	var counts []CategoryCount

	for _, b := range list {
		name := "Unknown"
		if b.Category != nil && b.Category.Name != "" {
			name = b.Category.Name
		}
		if i, ok := index[name]; ok {
			counts[i].Count++
			continue
		}
		index[name] = len(counts)
		counts = append(counts, CategoryCount{Name: name, Count: 1})
	}
	return counts
}
