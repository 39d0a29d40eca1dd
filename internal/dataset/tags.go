package dataset

import "strconv"

// TagCategory is the closed set of facet categories derived from metadata.
type TagCategory string

const (
	CategoryInstitution            TagCategory = "institution"
	CategoryAcquisitionInstitution TagCategory = "acquisition institution"
	CategoryOrganism               TagCategory = "organism"
	CategorySampleType             TagCategory = "sample type"
	CategorySampleSubtype          TagCategory = "sample subtype"
	CategoryTreatment              TagCategory = "treatment"
	CategoryAxialVoxelSize         TagCategory = "axial voxel size"
	CategoryLateralVoxelSize       TagCategory = "lateral voxel size"
	CategorySoftware               TagCategory = "software availability"
)

// Tag is a (value, category) facet used for filtering datasets.
type Tag struct {
	Value    string      `json:"value"`
	Category TagCategory `json:"category"`
}

// canonicalKey identifies a tag by its defining fields, so structurally equal
// tags collapse regardless of how they were derived.
func (t Tag) canonicalKey() string {
	return t.Value + "|" + string(t.Category)
}

// TagSet is a deduplicating, insertion-ordered tag collection.
type TagSet struct {
	order []Tag
	seen  map[string]struct{}
}

// Add inserts a tag unless a structurally identical one is already present.
func (s *TagSet) Add(t Tag) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	key := t.canonicalKey()
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.order = append(s.order, t)
}

// Has reports whether a structurally equal tag is in the set.
func (s *TagSet) Has(t Tag) bool {
	_, ok := s.seen[t.canonicalKey()]
	return ok
}

// Len returns the number of distinct tags.
func (s *TagSet) Len() int {
	return len(s.order)
}

// Tags returns the tags in insertion order.
func (s *TagSet) Tags() []Tag {
	out := make([]Tag, len(s.order))
	copy(out, s.order)
	return out
}

// axialVoxelThresholdNm splits datasets into coarse/fine axial resolution
// buckets for faceted filtering.
const axialVoxelThresholdNm = 6.0

// buildTags derives the tag set from dataset metadata. Empty list fields
// contribute nothing; voxel-size tags are omitted when the corresponding grid
// spacing components are absent.
func buildTags(meta Metadata) TagSet {
	var tags TagSet

	if meta.Imaging.Institution != "" {
		tags.Add(Tag{Value: meta.Imaging.Institution, Category: CategoryAcquisitionInstitution})
	}
	for _, inst := range meta.Institutions {
		tags.Add(Tag{Value: inst, Category: CategoryInstitution})
	}
	for _, v := range meta.Sample.Organism {
		tags.Add(Tag{Value: v, Category: CategoryOrganism})
	}
	for _, v := range meta.Sample.Type {
		tags.Add(Tag{Value: v, Category: CategorySampleType})
	}
	for _, v := range meta.Sample.Subtype {
		tags.Add(Tag{Value: v, Category: CategorySampleSubtype})
	}
	for _, v := range meta.Sample.Treatment {
		tags.Add(Tag{Value: v, Category: CategoryTreatment})
	}

	if z, ok := meta.Imaging.GridSpacing.Value("z"); ok {
		bucket := "<= " + formatSpacing(axialVoxelThresholdNm) + " nm"
		if z > axialVoxelThresholdNm {
			bucket = "> " + formatSpacing(axialVoxelThresholdNm) + " nm"
		}
		tags.Add(Tag{Value: bucket, Category: CategoryAxialVoxelSize})
	}

	if lateral, ok := lateralSpacing(meta.Imaging.GridSpacing); ok {
		tags.Add(Tag{Value: formatSpacing(lateral), Category: CategoryLateralVoxelSize})
	}

	if meta.SoftwareAvailability != "" {
		tags.Add(Tag{Value: meta.SoftwareAvailability, Category: CategorySoftware})
	}

	return tags
}

// lateralSpacing is the minimum of the x and y grid spacings. When only one
// component is present the minimum degenerates to that value; when both are
// absent there is no lateral spacing.
func lateralSpacing(gs Unitful) (float64, bool) {
	x, okX := gs.Value("x")
	y, okY := gs.Value("y")
	switch {
	case okX && okY:
		if y < x {
			return y, true
		}
		return x, true
	case okX:
		return x, true
	case okY:
		return y, true
	default:
		return 0, false
	}
}

func formatSpacing(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
