package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// StartBlendRequest opens a blend session for the first user.
type StartBlendRequest struct {
	UserHandle string `json:"user_handle" validate:"required,min=1"`
}

// JoinBlendRequest adds the second user to an open blend.
type JoinBlendRequest struct {
	BlendID    uuid.UUID `json:"blend_id" validate:"required"`
	UserHandle string    `json:"user_handle" validate:"required,min=1"`
}

// ScrapeBlendRequest asks the server to scrape both members of a blend.
type ScrapeBlendRequest struct {
	BlendID uuid.UUID `json:"blend_id" validate:"required"`
}

// BlendStatusRequest asks whether a blend's data is ready for scoring.
type BlendStatusRequest struct {
	BlendID uuid.UUID `json:"blend_id" validate:"required"`
}

// PairRequest names the two users for a pair computation.
type PairRequest struct {
	UserA   string    `json:"user_a" validate:"required,min=1"`
	UserB   string    `json:"user_b" validate:"required,min=1"`
	BlendID uuid.UUID `json:"blend_id,omitempty"`
}

// CommonMoviesRequest is a PairRequest with a result cap.
type CommonMoviesRequest struct {
	UserA     string    `json:"user_a" validate:"required,min=1"`
	UserB     string    `json:"user_b" validate:"required,min=1"`
	BlendID   uuid.UUID `json:"blend_id,omitempty"`
	MaxMovies int       `json:"max_movies,omitempty" validate:"omitempty,min=1,max=100"`
}

// Validate validates the StartBlendRequest using the validator.
func (r *StartBlendRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the JoinBlendRequest using the validator.
func (r *JoinBlendRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ScrapeBlendRequest using the validator.
func (r *ScrapeBlendRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the BlendStatusRequest using the validator.
func (r *BlendStatusRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the PairRequest using the validator.
func (r *PairRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CommonMoviesRequest using the validator.
func (r *CommonMoviesRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
