package mockapi

import (
	"fmt"

	"libportal/internal/domain"
)

// Demo accounts created by Seed.
const (
	DemoAdminDNI      = "00000001"
	DemoAdminPassword = "Admin$123"
	DemoUserDNI       = "12345678"
	DemoUserPassword  = "Lector$123"
)

// Seed loads a small catalog across two sites plus one admin and one reader.
func Seed(s *Store) error {
	s.AddSite(domain.Site{ID: 1, Code: "SED-001", Name: "Sede San Borja", Address: "Av. De La Poesía 160", Phone: "01-5136900", Active: true})
	s.AddSite(domain.Site{ID: 2, Code: "SED-002", Name: "Sede Centro de Lima", Address: "Av. Abancay 4ta cuadra", Active: true})
	s.AddSite(domain.Site{ID: 3, Code: "SED-003", Name: "Sede Breña", Address: "Jr. Huaraz 1200", Active: false})

	books := []domain.Book{
		{ID: 1, Title: "Los ríos profundos", Author: "José María Arguedas", ISBN: "9788437604381", Category: "Novela", SiteID: 1, StockTotal: 2, Available: true},
		{ID: 2, Title: "La ciudad y los perros", Author: "Mario Vargas Llosa", ISBN: "9788420412146", Category: "Novela", SiteID: 1, StockTotal: 1, Available: true},
		{ID: 3, Title: "Trilce", Author: "César Vallejo", ISBN: "9788437608143", Category: "Poesía", SiteID: 2, StockTotal: 3, Available: true},
		{ID: 4, Title: "Comentarios reales", Author: "Inca Garcilaso de la Vega", Category: "Historia", SiteID: 2, StockTotal: 1, Available: true},
		{ID: 5, Title: "El mundo es ancho y ajeno", Author: "Ciro Alegría", Category: "Novela", SiteID: 2, StockTotal: 1, Available: false},
	}
	for _, b := range books {
		b.InventoryCode = fmt.Sprintf("SED-%03d-LIB-%04d", b.SiteID, b.ID)
		s.AddBook(b)
	}

	resources := []domain.Resource{
		{ID: 1, Name: "Sala de estudio Vallejo", Kind: domain.ResourceRoom, SiteID: 1, Capacity: 8, Available: true},
		{ID: 2, Name: "Sala grupal Chabuca", Kind: domain.ResourceRoom, SiteID: 2, Capacity: 12, Available: true},
		{ID: 3, Name: "Laptop Lenovo 01", Kind: domain.ResourceEquipment, SiteID: 1, Available: true},
		{ID: 4, Name: "Proyector Epson", Kind: domain.ResourceEquipment, SiteID: 2, Available: false},
	}
	for _, r := range resources {
		r.InventoryCode = fmt.Sprintf("SED-%03d-REC-%04d", r.SiteID, r.ID)
		s.AddResource(r)
	}

	if err := s.AddUser(DemoAdminDNI, "admin@biblioteca.test", "Administrador", DemoAdminPassword, domain.RoleAdmin); err != nil {
		return err
	}
	return s.AddUser(DemoUserDNI, "lector@biblioteca.test", "Lector Demo", DemoUserPassword, domain.RoleUser)
}
