// internal/template/variables.go
package template

import "strings"

// availableVariables is the fixed catalog of placeholder paths templates may
// reference. Authoring-time validation rejects anything outside it; render
// time does not enforce it.
var availableVariables = []string{
	"user.id",
	"user.name",
	"user.first_name",
	"user.email",
	"user.phone",
	"user.role",

	"order.id",
	"order.number",
	"order.status",
	"order.total",
	"order.currency",
	"order.customer.name",
	"order.customer.email",

	"appointment.id",
	"appointment.date",
	"appointment.time",
	"appointment.status",
	"appointment.service",
	"appointment.staff_name",
	"appointment.location",

	"event.name",
	"event.category",
	"company.name",
	"company.support_email",
	"company.phone",
}

// variablePrefixes are namespaces whose sub-paths are all allowed, used for
// free-form payload sections.
var variablePrefixes = []string{
	"metadata.",
	"custom.",
}

// AvailableVariables returns a copy of the catalog for authoring UIs.
func AvailableVariables() []string {
	out := make([]string, len(availableVariables))
	copy(out, availableVariables)
	return out
}

func isAvailableVariable(path string) bool {
	for _, v := range availableVariables {
		if v == path {
			return true
		}
	}
	for _, p := range variablePrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
