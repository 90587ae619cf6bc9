package core

import "dwellingcore/pkg/domain"

// ItemStatus derives the display status of a single item.
func ItemStatus(item Item) Status {
	switch {
	case item.Complete:
		return StatusComplete
	case item.Data.Defined():
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// SectionStatus derives the display status of a section.
func SectionStatus(section Section) Status {
	switch {
	case section.Complete:
		return StatusComplete
	case section.Len() > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// SectionStatusIn is SectionStatus with document-level adjustments: the
// ductwork section stays in progress while any MVHR unit has no ductwork.
func SectionStatusIn(doc Document, path SectionPath) Status {
	status := SectionStatus(doc.Section(path))
	if path == domain.PathDuctwork && status == StatusComplete && len(MVHRUnitsWithoutDuctwork(doc)) > 0 {
		return StatusInProgress
	}
	return status
}

// PageStatus rolls up every registered section under prefix. A page is
// complete when all of its sections are, not started when none has begun and
// in progress otherwise.
func PageStatus(doc Document, registry domain.SchemaRegistry, prefix SectionPath) Status {
	total, complete, started := 0, 0, 0
	for _, schema := range registry.Schemas() {
		if !schema.Path.Within(prefix) {
			continue
		}
		total++
		switch SectionStatusIn(doc, schema.Path) {
		case StatusComplete:
			complete++
		case StatusInProgress:
			started++
		}
	}
	switch {
	case total == 0 || (complete == 0 && started == 0):
		return StatusNotStarted
	case complete == total:
		return StatusComplete
	default:
		return StatusInProgress
	}
}

// MVHRUnitsWithoutDuctwork lists the ids of MVHR ventilation units that no
// ductwork item points at.
func MVHRUnitsWithoutDuctwork(doc Document) []string {
	owned := make(map[string]struct{})
	for _, duct := range doc.Section(domain.PathDuctwork).Items {
		if id, ok := duct.Data.String("mvhrUnit"); ok && id != "" {
			owned[id] = struct{}{}
		}
	}
	var missing []string
	for _, unit := range doc.Section(domain.PathMechanicalVentilation).Items {
		if !domain.IsMVHRUnit(unit.Data) {
			continue
		}
		id := unit.Data.ID()
		if _, ok := owned[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
