package dataset

import "testing"

func TestTagSetDeduplicates(t *testing.T) {
	t.Parallel()

	var s TagSet
	tag := Tag{Value: "mouse", Category: CategoryOrganism}
	s.Add(tag)
	s.Add(tag)
	s.Add(Tag{Value: "mouse", Category: CategoryOrganism})

	if s.Len() != 1 {
		t.Fatalf("expected 1 tag after duplicate adds, got %d", s.Len())
	}
	if !s.Has(tag) {
		t.Error("tag not found after add")
	}

	// Same value under a different category is a distinct tag.
	s.Add(Tag{Value: "mouse", Category: CategorySampleType})
	if s.Len() != 2 {
		t.Fatalf("expected 2 tags, got %d", s.Len())
	}
}

func TestTagSetInsertionOrder(t *testing.T) {
	t.Parallel()

	var s TagSet
	s.Add(Tag{Value: "b", Category: CategoryOrganism})
	s.Add(Tag{Value: "a", Category: CategoryOrganism})
	s.Add(Tag{Value: "b", Category: CategoryOrganism})

	tags := s.Tags()
	if len(tags) != 2 || tags[0].Value != "b" || tags[1].Value != "a" {
		t.Fatalf("unexpected order: %v", tags)
	}
}

func TestBuildTagsLists(t *testing.T) {
	t.Parallel()

	meta := Metadata{
		Title:        "t",
		Institutions: []string{"Janelia", "EMBL", "Janelia"},
		Imaging:      Imaging{Institution: "Janelia"},
		Sample: Sample{
			Organism:  []string{"mouse"},
			Type:      []string{},
			Subtype:   []string{},
			Treatment: []string{"high-pressure freezing"},
		},
		SoftwareAvailability: "open",
	}

	tags := buildTags(meta)

	count := func(cat TagCategory) int {
		n := 0
		for _, tag := range tags.Tags() {
			if tag.Category == cat {
				n++
			}
		}
		return n
	}

	if got := count(CategoryOrganism); got != 1 {
		t.Errorf("organism tags = %d, want 1", got)
	}
	if got := count(CategorySampleType); got != 0 {
		t.Errorf("sample type tags = %d, want 0", got)
	}
	if got := count(CategoryInstitution); got != 2 {
		t.Errorf("institution tags = %d, want 2 (deduplicated)", got)
	}
	if !tags.Has(Tag{Value: "Janelia", Category: CategoryAcquisitionInstitution}) {
		t.Error("missing acquisition institution tag")
	}
	if !tags.Has(Tag{Value: "open", Category: CategorySoftware}) {
		t.Error("missing software availability tag")
	}
	// Same institution appears under both categories without collapsing.
	if !tags.Has(Tag{Value: "Janelia", Category: CategoryInstitution}) {
		t.Error("missing contributing institution tag")
	}
}

func TestBuildTagsVoxelSizes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		values      map[string]float64
		wantLateral string
		wantAxial   string
	}{
		{"bothPresent", map[string]float64{"x": 8, "y": 4, "z": 5}, "4", "<= 6 nm"},
		{"onlyX", map[string]float64{"x": 8, "z": 8}, "8", "> 6 nm"},
		{"onlyY", map[string]float64{"y": 3.2}, "3.2", ""},
		{"coarseAxial", map[string]float64{"z": 6.5}, "", "> 6 nm"},
		{"thresholdBoundary", map[string]float64{"z": 6}, "", "<= 6 nm"},
		{"nonePresent", nil, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := Metadata{Imaging: Imaging{GridSpacing: Unitful{Unit: "nm", Values: tc.values}}}
			tags := buildTags(meta)

			var lateral, axial string
			for _, tag := range tags.Tags() {
				switch tag.Category {
				case CategoryLateralVoxelSize:
					lateral = tag.Value
				case CategoryAxialVoxelSize:
					axial = tag.Value
				}
			}
			if lateral != tc.wantLateral {
				t.Errorf("lateral tag = %q, want %q", lateral, tc.wantLateral)
			}
			if axial != tc.wantAxial {
				t.Errorf("axial tag = %q, want %q", axial, tc.wantAxial)
			}
		})
	}
}

func TestBuildTagsGridSpacingScenario(t *testing.T) {
	t.Parallel()

	// gridSpacing {x: 8, y: 4}, no z: lateral = min = "4", axial absent.
	meta := Metadata{Imaging: Imaging{GridSpacing: Unitful{Unit: "nm", Values: map[string]float64{"x": 8, "y": 4}}}}
	tags := buildTags(meta)

	if !tags.Has(Tag{Value: "4", Category: CategoryLateralVoxelSize}) {
		t.Error("expected lateral voxel tag with value 4")
	}
	for _, tag := range tags.Tags() {
		if tag.Category == CategoryAxialVoxelSize {
			t.Errorf("axial tag should be absent, got %q", tag.Value)
		}
	}
}
