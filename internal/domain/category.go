package domain

// TagCategory classifies what a tag describes. The set is closed;
// stores reject values outside it.
type TagCategory string

const (
	CategoryGenre       TagCategory = "Genre"
	CategorySeries      TagCategory = "Series"
	CategoryContent     TagCategory = "Content"
	CategoryFormat      TagCategory = "Format"
	CategorySize        TagCategory = "Size"
	CategoryVersion     TagCategory = "Version"
	CategoryStatus      TagCategory = "Status"
	CategoryExtraction  TagCategory = "Extraction"
	CategoryDrive       TagCategory = "Drive"
	CategoryContentType TagCategory = "ContentType"
	CategoryUserFacing  TagCategory = "UserFacing"
)

// AllTagCategories lists every valid category.
var AllTagCategories = []TagCategory{
	CategoryGenre,
	CategorySeries,
	CategoryContent,
	CategoryFormat,
	CategorySize,
	CategoryVersion,
	CategoryStatus,
	CategoryExtraction,
	CategoryDrive,
	CategoryContentType,
	CategoryUserFacing,
}

// Valid reports whether the category is one of the known values.
func (c TagCategory) Valid() bool {
	for _, known := range AllTagCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Derived reports whether tags in this category are recomputed during
// bulk regeneration. User-facing tags and drive tags are preserved.
func (c TagCategory) Derived() bool {
	switch c {
	case CategoryUserFacing, CategoryDrive:
		return false
	default:
		return true
	}
}
