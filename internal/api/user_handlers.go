package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/teamspace/teamspace-server/internal/events"
	"github.com/teamspace/teamspace-server/internal/mail"
	"github.com/teamspace/teamspace-server/internal/models"
	"github.com/teamspace/teamspace-server/internal/storage"
	"github.com/teamspace/teamspace-server/pkg/crypto"
)

// HandleRegisterUser registers an inactive user with its profile and
// sends the activation email. User, profile and email form one unit:
// if the email cannot be sent the transaction is rolled back.
func (s *RESTServer) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	var req struct {
		Username        string  `json:"username" validate:"required,max=150"`
		Email           string  `json:"email" validate:"required,email"`
		Password        string  `json:"password" validate:"required,min=6"`
		PasswordConfirm string  `json:"password_confirm" validate:"required"`
		FirstName       string  `json:"first_name" validate:"max=150"`
		LastName        string  `json:"last_name" validate:"max=150"`
		PhoneNo         *string `json:"phone_no"`
		ProfilePic      *string `json:"profile_pic"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Validation order: password match, username, email, phone.
	// All checks precede any write.
	if req.Password != req.PasswordConfirm {
		s.respondFieldError(w, "password_confirm", "Passwords do not match.")
		return
	}

	if _, err := s.store.GetUserByUsername(ctx, schema, req.Username); err == nil {
		s.respondFieldError(w, "username", "This username is already taken.")
		return
	} else if err != storage.ErrNotFound {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if _, err := s.store.GetUserByEmail(ctx, schema, req.Email); err == nil {
		s.respondFieldError(w, "email", "This email is already in use.")
		return
	} else if err != storage.ErrNotFound {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.PhoneNo != nil && *req.PhoneNo != "" {
		if _, err := s.store.GetProfileByPhone(ctx, schema, *req.PhoneNo); err == nil {
			s.respondFieldError(w, "phone_no", "This phone number is already in use.")
			return
		} else if err != storage.ErrNotFound {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: passwordHash,
		IsActive:     false,
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.CreateUser(ctx, schema, user); err != nil {
		tx.Rollback()
		if err == storage.ErrDuplicateKey {
			s.respondFieldError(w, "username", "This username is already taken.")
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
			s.respondFieldError(w, "phone_no", "This phone number is already in use.")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The email send gates the commit: no user exists unless the
	// activation email went out.
	body := mail.ActivationBody(subdomain(r.Host), s.config.Tenancy.BaseDomain, user.ID)
	if err := s.mailer.Send(user.Email, mail.ActivationSubject, body); err != nil {
		tx.Rollback()
		log.Error().Err(err).Str("email", user.Email).Msg("Activation email failed, registration rolled back")
		s.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status": "FAILED",
			"error":  "failed to send activation email",
		})
		return
	}

	if err := tx.Commit(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.events.Publish(events.SubjectUserRegistered, map[string]interface{}{
		"schema":  schema,
		"user_id": user.ID,
	})

	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user": map[string]interface{}{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
		"status":  "SUCCESS",
		"message": "User registered successfully. Check your email to activate the account.",
	})
}

// HandleActivateUser flips a user from inactive to active. Activating
// an already-active user is a successful no-op.
func (s *RESTServer) HandleActivateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "user_id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.store.GetUser(ctx, schema, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if user.IsActive {
		s.respondJSON(w, http.StatusOK, map[string]string{
			"message": "Account is already active.",
		})
		return
	}

	user.IsActive = true
	if err := s.store.UpdateUser(ctx, schema, user); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.events.Publish(events.SubjectUserActivated, map[string]interface{}{
		"schema":  schema,
		"user_id": user.ID,
	})

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Account activated successfully.",
	})
}
