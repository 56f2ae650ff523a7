package api

import (
	"encoding/json"
	"net/http"

	"github.com/teamspace/teamspace-server/internal/models"
	"github.com/teamspace/teamspace-server/internal/storage"
	"github.com/teamspace/teamspace-server/pkg/crypto"
)

// ========== Profile handlers ==========

// HandleListProfiles lists profiles, optionally filtered by username
func (s *RESTServer) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)
	limit, offset := pagination(r)

	username := r.URL.Query().Get("username")

	profiles, total, err := s.store.ListProfiles(ctx, schema, username, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"total":    total,
	})
}

// profileUserRequest carries the nested user fields of a profile write
type profileUserRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"min=6"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// HandleCreateProfile creates a user and its profile in one unit
func (s *RESTServer) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	var req struct {
		User       profileUserRequest `json:"user"`
		PhoneNo    *string            `json:"phone_no"`
		ProfilePic *string            `json:"profile_pic"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req.User); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Accounts created through this surface are active immediately;
	// the activation flow only applies to self-registration.
	user := &models.User{
		Username:  req.User.Username,
		Email:     req.User.Email,
		FirstName: req.User.FirstName,
		LastName:  req.User.LastName,
		IsActive:  true,
	}

	if req.User.Password != "" {
		hash, err := crypto.HashPassword(req.User.Password)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.CreateUser(ctx, schema, user); err != nil {
		tx.Rollback()
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "username or email already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	profile := &models.Profile{
		UserID:     user.ID,
		PhoneNo:    req.PhoneNo,
		ProfilePic: req.ProfilePic,
	}

	if err := tx.CreateProfile(ctx, schema, profile); err != nil {
		tx.Rollback()
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "phone number already in use")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.Commit(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	profile.User = user
	s.respondJSON(w, http.StatusCreated, profile)
}

// HandleGetProfile gets a profile with its user expanded
func (s *RESTServer) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid profile id")
		return
	}

	profile, err := s.store.GetProfile(ctx, schema, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, profile)
}

// HandleGetOwnProfile gets the authenticated caller's profile
func (s *RESTServer) HandleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	claims := requestClaims(ctx)
	if claims == nil {
		s.respondError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	profile, err := s.store.GetProfileByUser(ctx, schema, claims.UserID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "Profile not found for current user.")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile updates a profile and its nested user fields
func (s *RESTServer) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid profile id")
		return
	}

	var req struct {
		User *struct {
			Username  string `json:"username"`
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"user"`
		PhoneNo    *string `json:"phone_no"`
		ProfilePic *string `json:"profile_pic"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.store.GetProfile(ctx, schema, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.User != nil {
		user := profile.User
		if req.User.Username != "" {
			user.Username = req.User.Username
		}
		if req.User.Email != "" {
			user.Email = req.User.Email
		}
		if req.User.FirstName != "" {
			user.FirstName = req.User.FirstName
		}
		if req.User.LastName != "" {
			user.LastName = req.User.LastName
		}

		if err := tx.UpdateUser(ctx, schema, user); err != nil {
			tx.Rollback()
			if err == storage.ErrDuplicateKey {
				s.respondError(w, http.StatusConflict, "username or email already exists")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if req.PhoneNo != nil {
		profile.PhoneNo = req.PhoneNo
	}
	if req.ProfilePic != nil {
		profile.ProfilePic = req.ProfilePic
	}

	if err := tx.UpdateProfile(ctx, schema, profile); err != nil {
		tx.Rollback()
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "phone number already in use")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.Commit(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, profile)
}

// HandleDeleteProfile deletes a profile and its user
func (s *RESTServer) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid profile id")
		return
	}

	if err := s.store.DeleteProfile(ctx, schema, id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
