package model

import "github.com/go-playground/validator/v10"

// NameMaxLength is the longest theater name accepted on create.
const NameMaxLength = 100

// Theater represents a movie theater venue.  This struct corresponds to a
// row in the `theaters` table and is also the JSON shape used by the API.
//
// Fields:
//  ID       – primary key identifier, assigned by the store.
//  Name     – display name of the theater.
//  Location – free-form address or location description.
//  Notes    – optional notes (nil when absent).
type Theater struct {
    ID       int64   `json:"id"`       // theaters.id
    Name     string  `json:"name"`     // theaters.name
    Location string  `json:"location"` // theaters.location
    Notes    *string `json:"notes"`    // theaters.notes (nullable)
}

// TheaterInput is the request body accepted by create and update.  ID is
// only meaningful for update, where it must match the path id.
type TheaterInput struct {
    ID       int64   `json:"id"`
    Name     string  `json:"name" validate:"required,max=100"`
    Location string  `json:"location" validate:"required"`
    Notes    *string `json:"notes"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate applies the create rules.  It returns validator.ValidationErrors
// when a rule fails.
func (in *TheaterInput) Validate() error {
    return validate.Struct(in)
}

// ToTheater copies the mutable fields into a new Theater with the given id.
func (in *TheaterInput) ToTheater(id int64) *Theater {
    return &Theater{
        ID:       id,
        Name:     in.Name,
        Location: in.Location,
        Notes:    in.Notes,
    }
}
