package domain

import "strings"

// Role identifies the kind of caller.
type Role string

const (
	RoleDriver     Role = "driver"
	RoleAdvertiser Role = "advertiser"
)

// Principal is an authenticated caller. The concrete type depends on the
// role; use a type switch to access role specific fields.
type Principal interface {
	Role() Role
	Subject() string
}

// DriverPrincipal is a caller acting as a driver.
type DriverPrincipal struct {
	DriverID     string
	VehicleClass VehicleClass
}

func (p DriverPrincipal) Role() Role      { return RoleDriver }
func (p DriverPrincipal) Subject() string { return p.DriverID }

// AdvertiserPrincipal is a caller acting as an advertiser.
type AdvertiserPrincipal struct {
	AdvertiserID string
}

func (p AdvertiserPrincipal) Role() Role      { return RoleAdvertiser }
func (p AdvertiserPrincipal) Subject() string { return p.AdvertiserID }

// PrincipalClaims are the loosely typed identity attributes supplied by
// the identity provider.
type PrincipalClaims struct {
	Subject      string
	Role         string
	VehicleClass string
}

// NewPrincipal validates claims against the field set required by their
// role and returns the matching Principal variant.
func NewPrincipal(c PrincipalClaims) (Principal, error) {
	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		return nil, ErrInvalidPrincipal
	}
	switch Role(strings.ToLower(c.Role)) {
	case RoleDriver:
		vc, err := ParseVehicleClass(c.VehicleClass)
		if err != nil {
			return nil, err
		}
		return DriverPrincipal{DriverID: subject, VehicleClass: vc}, nil
	case RoleAdvertiser:
		return AdvertiserPrincipal{AdvertiserID: subject}, nil
	default:
		return nil, ErrInvalidPrincipal
	}
}
