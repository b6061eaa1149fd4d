package validate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/votelane/reco-service/internal/domain"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON decodes strictly: unknown fields are rejected before any I/O
// happens downstream.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidation("invalid request body")
	}
	return nil
}

// Struct runs the tag-based validators over a decoded DTO.
func Struct(dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	meta := map[string]string{}
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			meta[fe.Field()] = fe.Tag()
		}
	}
	return domain.ErrValidationMeta("validation failed", meta)
}
