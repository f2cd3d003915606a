// Package project provides the project model and data access. Projects are
// the scope that comments may be attached to.
package project

import "time"

// Project is a tracked website or domain.
type Project struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	DomainRegistered *time.Time `json:"domainRegistered"`
	DomainExpires    *time.Time `json:"domainExpires"`
	DomainCost       *float64   `json:"domainCost,omitempty"`
	HostingCost      *float64   `json:"hostingCost,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// DaysUntilExpiry returns whole days from now until the domain expires, or
// nil if no expiry date is set.
func (p *Project) DaysUntilExpiry(now time.Time) *int {
	if p.DomainExpires == nil {
		return nil
	}
	d := int(p.DomainExpires.Sub(now).Hours() / 24)
	return &d
}

// TotalCost returns domain plus hosting cost.
func (p *Project) TotalCost() float64 {
	var total float64
	if p.DomainCost != nil {
		total += *p.DomainCost
	}
	if p.HostingCost != nil {
		total += *p.HostingCost
	}
	return total
}

// Input holds the editable fields of a project.
type Input struct {
	Name             *string    `json:"name,omitempty"`
	Status           *string    `json:"status,omitempty"`
	DomainRegistered *time.Time `json:"domainRegistered,omitempty"`
	DomainExpires    *time.Time `json:"domainExpires,omitempty"`
	DomainCost       *float64   `json:"domainCost,omitempty"`
	HostingCost      *float64   `json:"hostingCost,omitempty"`
}

func (in Input) apply(p *Project) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.DomainRegistered != nil {
		p.DomainRegistered = in.DomainRegistered
	}
	if in.DomainExpires != nil {
		p.DomainExpires = in.DomainExpires
	}
	if in.DomainCost != nil {
		p.DomainCost = in.DomainCost
	}
	if in.HostingCost != nil {
		p.HostingCost = in.HostingCost
	}
}
