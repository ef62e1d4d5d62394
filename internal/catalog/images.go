package catalog

// AddImage appends img. The first image of a product is always primary, and a new
// primary image demotes the previous one.
func AddImage(images []ProductImage, img ProductImage) []ProductImage {
	out := make([]ProductImage, 0, len(images)+1)
	if !hasPrimary(images) {
		img.IsPrimary = true
	}
	for _, existing := range images {
		if img.IsPrimary {
			existing.IsPrimary = false
		}
		out = append(out, existing)
	}
	return append(out, img)
}

// SetPrimaryImage marks imageID as the only primary image.
func SetPrimaryImage(images []ProductImage, imageID string) ([]ProductImage, error) {
	if indexOfImage(images, imageID) < 0 {
		return images, ErrImageNotFound
	}
	out := make([]ProductImage, len(images))
	for i, img := range images {
		img.IsPrimary = img.ID == imageID
		out[i] = img
	}
	return out, nil
}

// DemoteImage clears the primary flag on imageID and promotes the first other image.
// The sole image of a product cannot be demoted.
func DemoteImage(images []ProductImage, imageID string) ([]ProductImage, error) {
	idx := indexOfImage(images, imageID)
	if idx < 0 {
		return images, ErrImageNotFound
	}
	if !images[idx].IsPrimary {
		return images, nil
	}
	if len(images) == 1 {
		return images, ErrPrimaryRequired
	}
	for i := range images {
		if i != idx {
			return SetPrimaryImage(images, images[i].ID)
		}
	}
	return images, nil
}

// RemoveImage deletes imageID. When the primary image goes and others remain, the
// first remaining image becomes primary.
func RemoveImage(images []ProductImage, imageID string) ([]ProductImage, ProductImage, error) {
	idx := indexOfImage(images, imageID)
	if idx < 0 {
		return images, ProductImage{}, ErrImageNotFound
	}
	removed := images[idx]
	out := make([]ProductImage, 0, len(images)-1)
	out = append(out, images[:idx]...)
	out = append(out, images[idx+1:]...)
	if removed.IsPrimary && len(out) > 0 {
		out[0].IsPrimary = true
	}
	return out, removed, nil
}

func indexOfImage(images []ProductImage, imageID string) int {
	for i, img := range images {
		if img.ID == imageID {
			return i
		}
	}
	return -1
}

func hasPrimary(images []ProductImage) bool {
	for _, img := range images {
		if img.IsPrimary {
			return true
		}
	}
	return false
}
