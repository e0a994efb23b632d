package repository

import (
	"database/sql"
	"fmt"

	"jansetu/models"
)

// LocationRepository reads the ward → city → district hierarchy and the
// ward → constituency mapping. Read-only: location data is owned by an
// external collaborator.
type LocationRepository struct {
	db DBTX
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db DBTX) *LocationRepository {
	return &LocationRepository{db: db}
}

// GetWard retrieves a ward with its city and constituency references
func (r *LocationRepository) GetWard(wardID int64) (*models.Ward, error) {
	var w models.Ward
	err := r.db.QueryRow(
		`SELECT ward_id, city_id, name, assembly_constituency_id, parliamentary_constituency_id
		 FROM wards WHERE ward_id = ?`,
		wardID,
	).Scan(&w.WardID, &w.CityID, &w.Name, &w.AssemblyConstituencyID, &w.ParliamentaryConstituencyID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: ward %d", models.ErrNotFound, wardID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ward: %w", err)
	}
	return &w, nil
}

// GetCity retrieves a city with its parent district
func (r *LocationRepository) GetCity(cityID int64) (*models.City, error) {
	var c models.City
	err := r.db.QueryRow(
		`SELECT city_id, district_id, name FROM cities WHERE city_id = ?`,
		cityID,
	).Scan(&c.CityID, &c.DistrictID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: city %d", models.ErrNotFound, cityID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return &c, nil
}
