package service

import (
	"database/sql"
	"fmt"

	"jansetu/models"
	"jansetu/repository"
	"jansetu/utils"
)

// AuthorityService covers authority account login, the authority
// dashboard reads and the admin provisioning surface
type AuthorityService struct {
	db            *sql.DB
	jwtSecret     []byte
	tokenTTLHours int
}

// NewAuthorityService creates a new authority service. tokenTTLHours is
// the lifetime of issued login tokens.
func NewAuthorityService(db *sql.DB, jwtSecret []byte, tokenTTLHours int) *AuthorityService {
	return &AuthorityService{db: db, jwtSecret: jwtSecret, tokenTTLHours: tokenTTLHours}
}

// Login validates authority credentials and mints a token scoped to the
// authority role
func (s *AuthorityService) Login(req *models.LoginRequest) (*models.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", models.ErrValidation)
	}

	userRepo := repository.NewUserRepository(s.db)
	user, err := userRepo.GetByEmail(req.Email)
	if err != nil {
		// Credential failures never reveal whether the account exists.
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}
	if user.Role != models.RoleAuthority && user.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}
	if !user.IsActive || !user.PasswordHash.Valid {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}
	if err := utils.CheckPassword(req.Password, user.PasswordHash.String); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	response := &models.LoginResponse{UserID: user.UserID}
	var authorityID *int64
	if user.Role == models.RoleAuthority {
		authority, err := repository.NewAuthorityRepository(s.db).GetByUserID(user.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load authority profile: %w", err)
		}
		if !authority.IsActive {
			return nil, fmt.Errorf("%w: authority account is inactive", models.ErrUnauthorized)
		}
		authorityID = &authority.AuthorityID
		response.AuthorityID = authority.AuthorityID
		response.Level = authority.Level
	}

	token, err := utils.GenerateJWT(user.UserID, user.Role, authorityID, s.jwtSecret, s.tokenTTLHours)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	response.Token = token
	return response, nil
}

// GetProfile returns the authority row for the logged-in authority
func (s *AuthorityService) GetProfile(actor models.Identity) (*models.Authority, error) {
	if actor.Role != models.RoleAuthority || !actor.AuthorityID.Valid {
		return nil, fmt.Errorf("%w: authority identity required", models.ErrForbidden)
	}
	return repository.NewAuthorityRepository(s.db).GetByID(actor.AuthorityID.Int64)
}

// ListAssigned returns complaints assigned to the logged-in authority
func (s *AuthorityService) ListAssigned(actor models.Identity, statusFilter string, limit, offset int) ([]models.Complaint, int64, error) {
	if actor.Role != models.RoleAuthority || !actor.AuthorityID.Valid {
		return nil, 0, fmt.Errorf("%w: authority identity required", models.ErrForbidden)
	}
	if statusFilter != "" {
		if _, err := models.ParseStatus(statusFilter); err != nil {
			return nil, 0, err
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return repository.NewComplaintRepository(s.db).ListByAuthority(actor.AuthorityID.Int64, statusFilter, limit, offset)
}

// CreateAuthority provisions an authority: the user account and the
// authority row are created in one transaction (admin)
func (s *AuthorityService) CreateAuthority(req *models.CreateAuthorityRequest, actor models.Identity) (*models.Authority, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may create authorities", models.ErrForbidden)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", models.ErrValidation)
	}
	if req.DepartmentID == 0 {
		return nil, fmt.Errorf("%w: department_id is required", models.ErrValidation)
	}
	if req.Level < 1 {
		return nil, fmt.Errorf("%w: level must be at least 1", models.ErrValidation)
	}
	scopes := 0
	for _, set := range []bool{req.WardID != nil, req.CityID != nil, req.DistrictID != nil} {
		if set {
			scopes++
		}
	}
	if scopes > 1 {
		return nil, fmt.Errorf("%w: an authority operates at exactly one jurisdiction granularity", models.ErrValidation)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	authority := &models.Authority{
		DepartmentID: req.DepartmentID,
		Level:        req.Level,
		IsActive:     true,
	}
	if req.WardID != nil {
		authority.WardID = sql.NullInt64{Int64: *req.WardID, Valid: true}
	}
	if req.CityID != nil {
		authority.CityID = sql.NullInt64{Int64: *req.CityID, Valid: true}
	}
	if req.DistrictID != nil {
		authority.DistrictID = sql.NullInt64{Int64: *req.DistrictID, Valid: true}
	}

	err = repository.Transact(s.db, func(tx *sql.Tx) error {
		userRepo := repository.NewUserRepository(tx)
		authorityRepo := repository.NewAuthorityRepository(tx)

		if _, err := repository.NewDepartmentRepository(tx).GetByID(req.DepartmentID); err != nil {
			return err
		}

		user := &models.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: sql.NullString{String: passwordHash, Valid: true},
			Role:         models.RoleAuthority,
			IsActive:     true,
		}
		if err := userRepo.Create(user); err != nil {
			return err
		}
		authority.UserID = user.UserID
		return authorityRepo.Create(authority)
	})
	if err != nil {
		return nil, err
	}
	return authority, nil
}

// ListAuthorities returns all authorities (admin)
func (s *AuthorityService) ListAuthorities(actor models.Identity) ([]models.Authority, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may list authorities", models.ErrForbidden)
	}
	return repository.NewAuthorityRepository(s.db).List()
}

// UpdateAuthority toggles activation or changes level (admin)
func (s *AuthorityService) UpdateAuthority(authorityID int64, req *models.UpdateAuthorityRequest, actor models.Identity) (*models.Authority, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may update authorities", models.ErrForbidden)
	}
	if req.IsActive == nil && req.Level == nil {
		return nil, fmt.Errorf("%w: nothing to update", models.ErrValidation)
	}
	if req.Level != nil && *req.Level < 1 {
		return nil, fmt.Errorf("%w: level must be at least 1", models.ErrValidation)
	}

	var updated *models.Authority
	err := repository.Transact(s.db, func(tx *sql.Tx) error {
		authorityRepo := repository.NewAuthorityRepository(tx)
		if _, err := authorityRepo.GetByID(authorityID); err != nil {
			return err
		}
		if req.IsActive != nil {
			if err := authorityRepo.SetActive(authorityID, *req.IsActive); err != nil {
				return err
			}
		}
		if req.Level != nil {
			if err := authorityRepo.UpdateLevel(authorityID, *req.Level); err != nil {
				return err
			}
		}
		var err error
		updated, err = authorityRepo.GetByID(authorityID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
