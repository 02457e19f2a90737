package enums

import "fmt"

// ServiceCategory maps to the service_category enum in Postgres.
type ServiceCategory string

const (
	ServiceCategoryPlumbing        ServiceCategory = "plumbing"
	ServiceCategoryElectrical      ServiceCategory = "electrical"
	ServiceCategoryCarpentry       ServiceCategory = "carpentry"
	ServiceCategoryPainting        ServiceCategory = "painting"
	ServiceCategoryCleaning        ServiceCategory = "cleaning"
	ServiceCategoryHVAC            ServiceCategory = "hvac"
	ServiceCategoryApplianceRepair ServiceCategory = "appliance_repair"
	ServiceCategoryGardening       ServiceCategory = "gardening"
	ServiceCategoryGeneral         ServiceCategory = "general"
)

var validServiceCategories = []ServiceCategory{
	ServiceCategoryPlumbing,
	ServiceCategoryElectrical,
	ServiceCategoryCarpentry,
	ServiceCategoryPainting,
	ServiceCategoryCleaning,
	ServiceCategoryHVAC,
	ServiceCategoryApplianceRepair,
	ServiceCategoryGardening,
	ServiceCategoryGeneral,
}

// String implements fmt.Stringer.
func (s ServiceCategory) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceCategory.
func (s ServiceCategory) IsValid() bool {
	for _, candidate := range validServiceCategories {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceCategory converts raw input into a ServiceCategory.
func ParseServiceCategory(value string) (ServiceCategory, error) {
	for _, candidate := range validServiceCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service category %q", value)
}
