// README: Booking record, lifecycle states and transition events.
package booking

import (
	"time"

	"kargo/internal/types"
)

type State string

const (
	StateUnclaimed  State = "unclaimed"
	StateClaimed    State = "claimed"
	StatePickedUp   State = "picked_up"
	StateDroppedOff State = "dropped_off"
)

// Booking mirrors a document of the "book" collection. Bookings are created by the
// rider application; this service only claims and advances them.
type Booking struct {
	ID              types.ID    `json:"id"`
	UserID          types.ID    `json:"userId"`
	DriverID        *types.ID   `json:"driverId,omitempty"`
	PickupLocation  string      `json:"pickupLocation"`
	PickupCoords    types.Point `json:"pickupCoords"`
	DropoffLocation string      `json:"dropoffLocation"`
	DropoffCoords   types.Point `json:"dropoffCoords"`
	RideDistance    string      `json:"rideDistance"`
	RideTime        string      `json:"rideTime"`
	RidePrice       string      `json:"ridePrice"`
	IsPickUp        bool        `json:"isPickUp"`
	IsDropoff       bool        `json:"isDropoff"`
	Timestamp       time.Time   `json:"timestamp"`
	UserWeight      int         `json:"userWeight"`

	UserFirstName   string `json:"userfirstName,omitempty"`
	UserLastName    string `json:"userlastName,omitempty"`
	UserPhoneNumber string `json:"userPhoneNumber,omitempty"`
}

// State derives the lifecycle state from the stored flags.
func (b *Booking) State() State {
	switch {
	case b.DriverID == nil || *b.DriverID == "":
		return StateUnclaimed
	case b.IsDropoff:
		return StateDroppedOff
	case b.IsPickUp:
		return StatePickedUp
	default:
		return StateClaimed
	}
}

// AssignedTo reports whether driverID holds the claim on b.
func (b *Booking) AssignedTo(driverID types.ID) bool {
	return b.DriverID != nil && driverID != "" && *b.DriverID == driverID
}

// AllowedTransitions represents the booking state flow as code.
var AllowedTransitions = map[State][]State{
	StateUnclaimed: {StateClaimed},
	StateClaimed:   {StatePickedUp},
	StatePickedUp:  {StateDroppedOff},
}

func CanTransition(from, to State) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Field names a stored booking attribute a transition may write.
type Field string

const (
	FieldDriverID  Field = "driverId"
	FieldIsPickUp  Field = "isPickUp"
	FieldIsDropoff Field = "isDropoff"
)

// Patch is the single field write performed by one transition.
type Patch struct {
	Field Field
	Value any
}

func claimPatch(driverID types.ID) Patch { return Patch{Field: FieldDriverID, Value: driverID} }

var (
	pickupPatch  = Patch{Field: FieldIsPickUp, Value: true}
	dropoffPatch = Patch{Field: FieldIsDropoff, Value: true}
)

// Apply writes the patch onto b. Unknown fields are ignored.
func (p Patch) Apply(b *Booking) {
	switch p.Field {
	case FieldDriverID:
		if id, ok := p.Value.(types.ID); ok {
			b.DriverID = &id
		}
	case FieldIsPickUp:
		if v, ok := p.Value.(bool); ok {
			b.IsPickUp = v
		}
	case FieldIsDropoff:
		if v, ok := p.Value.(bool); ok {
			b.IsDropoff = v
		}
	}
}

// Event records one successful transition.
type Event struct {
	ID         string    `json:"id"`
	BookingID  types.ID  `json:"bookingId"`
	FromState  State     `json:"fromState"`
	ToState    State     `json:"toState"`
	DriverID   types.ID  `json:"driverId"`
	OccurredAt time.Time `json:"occurredAt"`
}
