package service

import "jansetu/models"

// Jurisdiction resolution is a pure function of an authority roster
// snapshot, a department and a location. Both the complaint-creation path
// and the escalation sweep resolve through these two functions, so the
// matching semantics cannot drift between them.

// AssignAuthority picks the authority for a new complaint.
//
// Ward first: an active authority scoped to exactly (ward, department),
// lowest level winning. Otherwise city level: an active authority scoped
// to the city or to the city's parent district, again lowest level, first
// match breaking ties. No match means the complaint is created unassigned,
// which is a valid terminal state, not an error.
func AssignAuthority(roster []models.Authority, departmentID int64, wardID *int64, cityID, districtID int64) *models.Authority {
	if wardID != nil {
		if a := lowestLevel(roster, func(a models.Authority) bool {
			return a.DepartmentID == departmentID && a.WardID.Valid && a.WardID.Int64 == *wardID
		}); a != nil {
			return a
		}
	}
	return lowestLevel(roster, func(a models.Authority) bool {
		if a.DepartmentID != departmentID {
			return false
		}
		if a.CityID.Valid && a.CityID.Int64 == cityID {
			return true
		}
		return a.DistrictID.Valid && a.DistrictID.Int64 == districtID
	})
}

// AssignAuthorityAtLevel picks the escalation target at a fixed level:
// prefer a ward match, then the city, then district-or-wider (a district
// match or an unscoped authority). First roster match wins within each
// pass; roster order is level then insertion order.
func AssignAuthorityAtLevel(roster []models.Authority, departmentID int64, level int, wardID *int64, cityID, districtID int64) *models.Authority {
	atLevel := func(a models.Authority) bool {
		return a.IsActive && a.DepartmentID == departmentID && a.Level == level
	}

	if wardID != nil {
		for i := range roster {
			a := roster[i]
			if atLevel(a) && a.WardID.Valid && a.WardID.Int64 == *wardID {
				return &roster[i]
			}
		}
	}
	for i := range roster {
		a := roster[i]
		if atLevel(a) && a.CityID.Valid && a.CityID.Int64 == cityID {
			return &roster[i]
		}
	}
	for i := range roster {
		a := roster[i]
		if !atLevel(a) {
			continue
		}
		if a.DistrictID.Valid && a.DistrictID.Int64 == districtID {
			return &roster[i]
		}
		if !a.WardID.Valid && !a.CityID.Valid && !a.DistrictID.Valid {
			return &roster[i]
		}
	}
	return nil
}

// lowestLevel returns the first active roster entry matching the predicate
// at the lowest level. Roster order breaks level ties.
func lowestLevel(roster []models.Authority, match func(models.Authority) bool) *models.Authority {
	var best *models.Authority
	for i := range roster {
		a := roster[i]
		if !a.IsActive || !match(a) {
			continue
		}
		if best == nil || a.Level < best.Level {
			best = &roster[i]
		}
	}
	return best
}
