package narrative

import "time"

// Official is an officiating authority who attests the letter.
type Official struct {
	// Region is the village or district the official heads.
	Region string
	Name   string
}

// Options carries everything the letter needs that is not part of the family.
// Empty values are printed as placeholders.
type Options struct {
	// Today dates the signature block. It is never read from the clock here.
	Today     time.Time
	SignPlace string
	// VillageHead is the Kepala Desa/Lurah who registers the letter.
	VillageHead Official
	// DistrictHead is the Camat who confirms it.
	DistrictHead Official
}
