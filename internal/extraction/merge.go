package extraction

// isContinuation reports whether a parsed row only carries description text
// spilled over from the row above it.
func isContinuation(item LineItem) bool {
	return item.Quantity == nil && item.UnitPrice == nil && item.TotalWithTax == nil
}

// MergeContinuations folds continuation rows into the description of the
// preceding item. The first row has nothing to fold into, so it is kept as
// is, warning included.
func MergeContinuations(items []LineItem) []LineItem {
	merged := make([]LineItem, 0, len(items))
	for i, item := range items {
		if i > 0 && isContinuation(item) {
			prev := &merged[len(merged)-1]
			prev.Description = prev.Description + " " + item.Description
			continue
		}
		merged = append(merged, item)
	}
	return merged
}
