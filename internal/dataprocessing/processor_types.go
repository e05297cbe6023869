package dataprocessing

// Default tracked categories for the daily report.
var DefaultTrackedCategories = []string{"קו", "מפלג"}

// ProcessingOptions configures report derivation.
type ProcessingOptions struct {
	// TrackedCategories selects the rows of the daily category report.
	TrackedCategories []string

	// RepeatCategoryColumns repeats category and sub-category values on every
	// name row of the daily report.
	RepeatCategoryColumns bool
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		TrackedCategories: append([]string(nil), DefaultTrackedCategories...),
	}
}
