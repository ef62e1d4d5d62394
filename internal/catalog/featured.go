package catalog

// CheckFeaturedToggle decides whether a product may move to want.
// Turning the flag off, or asking for the state the product already has, is always allowed.
func CheckFeaturedToggle(featuredCount, limit int, currentlyFeatured, want bool) error {
	if !want || currentlyFeatured {
		return nil
	}
	if featuredCount >= limit {
		return ErrFeaturedLimit
	}
	return nil
}
