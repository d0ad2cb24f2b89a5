package workflow

import (
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

// Catalog answers the lookups needed to refresh allocation quantities
type Catalog interface {
	Department(name string) (models.Department, bool)
	Override(departmentID, requirementID, date string) (models.ResourceAvailability, bool)
}

// CatalogSnapshot is an in-memory Catalog built from one read of the departments
// and resource availability collections.
type CatalogSnapshot struct {
	departments map[string]models.Department
	overrides   map[string]models.ResourceAvailability
}

// NewCatalogSnapshot indexes departments by name and overrides by
// (department, requirement, date).
func NewCatalogSnapshot(departments []models.Department, overrides []models.ResourceAvailability) *CatalogSnapshot {
	c := &CatalogSnapshot{
		departments: make(map[string]models.Department, len(departments)),
		overrides:   make(map[string]models.ResourceAvailability, len(overrides)),
	}
	for _, d := range departments {
		c.departments[d.Name] = d
	}
	for _, o := range overrides {
		c.overrides[overrideKey(o.DepartmentID.Hex(), o.RequirementID.Hex(), o.Date)] = o
	}
	return c
}

func overrideKey(departmentID, requirementID, date string) string {
	return departmentID + "|" + requirementID + "|" + date
}

// Department implements Catalog
func (c *CatalogSnapshot) Department(name string) (models.Department, bool) {
	d, ok := c.departments[name]
	return d, ok
}

// Override implements Catalog
func (c *CatalogSnapshot) Override(departmentID, requirementID, date string) (models.ResourceAvailability, bool) {
	o, ok := c.overrides[overrideKey(departmentID, requirementID, date)]
	return o, ok
}

// HasDepartment reports whether name is in the catalog
func (c *CatalogSnapshot) HasDepartment(name string) bool {
	_, ok := c.departments[name]
	return ok
}

// RefreshQuantities re-derives totalQuantity and availability for every allocation
// on ev using the override for the event start date, then the catalog default.
// Allocations with neither keep what was stored.
func RefreshQuantities(ev *models.Event, c Catalog) {
	for i := range ev.DepartmentRequirements {
		d := &ev.DepartmentRequirements[i]
		dept, ok := c.Department(d.Department)
		if !ok {
			continue
		}
		for j := range d.Requirements {
			refreshAllocation(&d.Requirements[j], dept, c, ev.StartDate)
		}
	}
}

func refreshAllocation(a *models.RequirementAllocation, dept models.Department, c Catalog, date string) {
	def, ok := dept.FindRequirement(a.Name)
	if !ok {
		return
	}
	if o, ok := c.Override(dept.ID.Hex(), def.ID.Hex(), date); ok {
		q := o.Quantity
		a.TotalQuantity = &q
		a.IsAvailable = o.IsAvailable
		return
	}
	if def.TotalQuantity != nil {
		q := *def.TotalQuantity
		a.TotalQuantity = &q
	}
	a.IsAvailable = def.IsAvailable
}
