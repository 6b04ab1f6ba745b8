package timesheet

// Default enumerations. The server can override both lists from configuration and
// clients read the active lists from the options endpoint.
var (
	DefaultTimeCategories = []string{
		"Keep The Lights On",
		"Meeting",
		"Development",
		"Testing",
		"Documentation",
		"Support",
	}

	DefaultResourcePlans = []string{
		"None",
		"Sprint Plan",
		"Maintenance",
		"Client Project",
	}
)

// PageSizeOptions are the selectable list page sizes.
var PageSizeOptions = []int{5, 10, 25, 50}

// DefaultPageSize is used when no option has been selected.
const DefaultPageSize = 10

// Options describes the enumerations a client renders in its pickers.
type Options struct {
	TimeCategories []string `json:"time_categories"`
	ResourcePlans  []string `json:"resource_plans"`
	PageSizes      []int    `json:"page_sizes"`
}

// NewOptions falls back to the defaults for any empty list.
func NewOptions(categories, plans []string) Options {
	if len(categories) == 0 {
		categories = DefaultTimeCategories
	}
	if len(plans) == 0 {
		plans = DefaultResourcePlans
	}
	return Options{
		TimeCategories: categories,
		ResourcePlans:  plans,
		PageSizes:      PageSizeOptions,
	}
}

func (o Options) HasCategory(c string) bool {
	return contains(o.TimeCategories, c)
}

func (o Options) HasResourcePlan(p string) bool {
	return contains(o.ResourcePlans, p)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
