package model

// Role is the closed set of actor roles that may operate on a hotel.
// It replaces free-form role strings with an explicit capability check
// per operation.
type Role string

const (
	RoleReceptionist Role = "receptionist"
	RoleManager      Role = "manager"
	RoleAdmin        Role = "admin"
	RoleSuperAdmin   Role = "super_admin"
)

// Capability names a guarded operation on hotel state.
type Capability string

const (
	CapReservationCreate     Capability = "reservation.create"
	CapReservationImport     Capability = "reservation.import" // create directly into a non-pending status
	CapReservationUpdate     Capability = "reservation.update"
	CapReservationTransition Capability = "reservation.transition"
	CapReservationCancelLate Capability = "reservation.cancel_confirmed"
	CapReservationDelete     Capability = "reservation.delete"
	CapRoomWrite             Capability = "room.write"
	CapRoomDelete            Capability = "room.delete"
	CapHotelWrite            Capability = "hotel.write"
	CapAuditRead             Capability = "audit.read"
	CapBackupManage          Capability = "backup.manage"
	CapBackupFullSystem      Capability = "backup.full_system"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleReceptionist: caps(
		CapReservationCreate,
		CapReservationUpdate,
		CapReservationTransition,
	),
	RoleManager: caps(
		CapReservationCreate,
		CapReservationImport,
		CapReservationUpdate,
		CapReservationTransition,
		CapReservationCancelLate,
		CapReservationDelete,
		CapRoomWrite,
		CapAuditRead,
	),
	RoleAdmin: caps(
		CapReservationCreate,
		CapReservationImport,
		CapReservationUpdate,
		CapReservationTransition,
		CapReservationCancelLate,
		CapReservationDelete,
		CapRoomWrite,
		CapRoomDelete,
		CapAuditRead,
		CapBackupManage,
	),
	RoleSuperAdmin: caps(
		CapReservationCreate,
		CapReservationImport,
		CapReservationUpdate,
		CapReservationTransition,
		CapReservationCancelLate,
		CapReservationDelete,
		CapRoomWrite,
		CapRoomDelete,
		CapHotelWrite,
		CapAuditRead,
		CapBackupManage,
		CapBackupFullSystem,
	),
}

func caps(cs ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(cs))
	for _, c := range cs {
		m[c] = true
	}
	return m
}

// ParseRole returns the Role for s, or false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := roleCapabilities[r]
	return r, ok
}

// Can reports whether the role holds the capability. Unknown roles hold none.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// Actor identifies who performed an operation. Authentication happens
// outside this service; the identity arrives on trusted headers.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
