// Package media turns uploaded photos and videos into media references: the
// self-contained strings stored on an item. References are either inline
// data URLs (the default) or object-store URLs, behind the Store interface.
package media

// Split partitions an item's photos into the publicly visible part and the
// part withheld until claim verification: the first half is visible, the
// second half hidden, rounding up for odd counts. A single photo stays
// visible so an item is always browsable.
func Split(images []string) (visible, hidden []string) {
	cut := (len(images) + 1) / 2
	return images[:cut], images[cut:]
}
