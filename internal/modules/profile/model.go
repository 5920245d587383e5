// README: Driver and rider profiles.
package profile

import (
	"fmt"
	"strings"

	"kargo/internal/types"
)

// Driver mirrors a document of the "drivers" collection. Weight and MaxLoad feed the
// booking feed capacity check.
type Driver struct {
	ID              types.ID `json:"id"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	PhoneNumber     string   `json:"phoneNumber"`
	MotorcycleModel string   `json:"motorcycleModel"`
	MotorcycleRegNo string   `json:"motorcycleRegNo"`
	Weight          int      `json:"weight"`
	MaxLoad         int      `json:"maxLoad"`
	ProfilePicture  string   `json:"profilePicture,omitempty"`
}

// Rider mirrors a document of the "users" collection.
type Rider struct {
	ID             types.ID `json:"id"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	PhoneNumber    string   `json:"phoneNumber"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
}

// DriverInfo is the editable part of a driver profile.
type DriverInfo struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber"`
	MotorcycleModel string `json:"motorcycleModel"`
	MotorcycleRegNo string `json:"motorcycleRegNo"`
	Weight          int    `json:"weight"`
	MaxLoad         int    `json:"maxLoad"`
}

func (i DriverInfo) Validate() error {
	if strings.TrimSpace(i.FirstName) == "" || strings.TrimSpace(i.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", types.ErrInvalidInput)
	}
	if i.Weight < 0 || i.MaxLoad < 0 {
		return fmt.Errorf("%w: weight and maxLoad must not be negative", types.ErrInvalidInput)
	}
	return nil
}

func (i DriverInfo) apply(d *Driver) {
	d.FirstName = i.FirstName
	d.LastName = i.LastName
	d.PhoneNumber = i.PhoneNumber
	d.MotorcycleModel = i.MotorcycleModel
	d.MotorcycleRegNo = i.MotorcycleRegNo
	d.Weight = i.Weight
	d.MaxLoad = i.MaxLoad
}
