package domain

// TargetKind selects which reservation flow applies to an item.
// Values are the wire values of the `tipo` field.
type TargetKind string

const (
	TargetBook TargetKind = "LIBRO"
	TargetRoom TargetKind = "SALA"
)

func (k TargetKind) Valid() bool {
	return k == TargetBook || k == TargetRoom
}

type ResourceKind string

const (
	ResourceRoom      ResourceKind = "SALA"
	ResourceEquipment ResourceKind = "EQUIPO"
)

type Site struct {
	ID      int64  `json:"id"`
	Code    string `json:"codigo"`
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono,omitempty"`
	Active  bool   `json:"activo"`
}

type Book struct {
	ID            int64  `json:"id"`
	InventoryCode string `json:"codigo_inventario,omitempty"`
	Title         string `json:"titulo"`
	Author        string `json:"autor"`
	ISBN          string `json:"isbn,omitempty"`
	Category      string `json:"categoria,omitempty"`
	SiteID        int64  `json:"sede_id"`
	SiteName      string `json:"nombre_sede,omitempty"`
	StockTotal    int    `json:"stock_total"`
	Available     bool   `json:"disponible"`
}

type Resource struct {
	ID            int64        `json:"id"`
	InventoryCode string       `json:"codigo_inventario,omitempty"`
	Name          string       `json:"nombre"`
	Kind          ResourceKind `json:"tipo_recurso"`
	SiteID        int64        `json:"sede_id"`
	SiteName      string       `json:"nombre_sede,omitempty"`
	Capacity      int          `json:"capacidad,omitempty"`
	Available     bool         `json:"disponible"`
}

// Target is the read-only reference to the item a reservation dialog is for.
// Rooms and equipment share the slot-based flow.
type Target struct {
	Kind     TargetKind
	ID       int64
	Title    string
	Subtitle string
	SiteName string
}

func BookTarget(b Book) Target {
	return Target{Kind: TargetBook, ID: b.ID, Title: b.Title, Subtitle: b.Author, SiteName: b.SiteName}
}

func ResourceTarget(r Resource) Target {
	return Target{Kind: TargetRoom, ID: r.ID, Title: r.Name, SiteName: r.SiteName}
}
