// Package navigation decides where "continue" leads from the start page.
package navigation

type Page string

const (
	SmallConfigurator Page = "configurator-small"
	LargeConfigurator Page = "configurator-large"
	Questionnaire     Page = "questionnaire"
)

const (
	VanSmall = "small"
	VanLarge = "large"
)

// Route maps the stored van class to its configurator. Anything else,
// including an empty or placeholder value, leads to the questionnaire.
func Route(vanType string) Page {
	switch vanType {
	case VanSmall:
		return SmallConfigurator
	case VanLarge:
		return LargeConfigurator
	}
	return Questionnaire
}

// ValidVanType reports whether v is a van class a configurator exists for.
func ValidVanType(v string) bool {
	return v == VanSmall || v == VanLarge
}
