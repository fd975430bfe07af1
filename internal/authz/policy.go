package authz

import "github.com/pepsifleet/fleet-maintenance/internal/models"

// Resource names a protected API resource.
type Resource string

// Action names what a caller wants to do with a resource.
type Action string

const (
	ResOrdenesTrabajo  Resource = "ordenes-trabajo"
	ResRegistrosAcceso Resource = "registros-acceso"
	ResSolicitudes     Resource = "solicitudes"
	ResRepuestos       Resource = "repuestos"
	ResVehiculos       Resource = "vehiculos"
	ResUsuarios        Resource = "usuarios"
	ResReportes        Resource = "reportes"
	ResFotos           Resource = "fotos"
)

const (
	ActVer        Action = "ver"
	ActCrear      Action = "crear"
	ActActualizar Action = "actualizar"
	ActEliminar   Action = "eliminar"
)

// policy is the single authorization table consulted at the service
// boundary. Admins bypass it entirely.
var policy = map[models.Role]map[Resource][]Action{
	models.RolePlanificador: {
		ResOrdenesTrabajo:  {ActVer, ActCrear},
		ResSolicitudes:     {ActVer, ActActualizar, ActEliminar},
		ResVehiculos:       {ActVer},
		ResRepuestos:       {ActVer},
		ResRegistrosAcceso: {ActVer},
		ResReportes:        {ActVer},
		ResUsuarios:        {ActVer},
		ResFotos:           {ActCrear},
	},
	models.RoleSupervisor: {
		ResOrdenesTrabajo: {ActVer, ActActualizar},
		ResSolicitudes:    {ActVer},
		ResVehiculos:      {ActVer},
		ResRepuestos:      {ActVer, ActCrear, ActEliminar},
		ResReportes:       {ActVer},
		ResUsuarios:       {ActVer},
		ResFotos:          {ActCrear},
	},
	models.RoleMecanico: {
		ResOrdenesTrabajo: {ActVer, ActActualizar},
		ResRepuestos:      {ActVer},
		ResFotos:          {ActCrear},
	},
	models.RoleChofer: {
		ResSolicitudes: {ActVer, ActCrear, ActEliminar},
		ResVehiculos:   {ActVer},
	},
	models.RoleGuardia: {
		ResRegistrosAcceso: {ActVer, ActCrear, ActActualizar},
		ResOrdenesTrabajo:  {ActVer, ActActualizar},
	},
}

// Allowed reports whether the role may perform the action on the resource.
func Allowed(role models.Role, res Resource, act Action) bool {
	if role == models.RoleAdmin {
		return true
	}
	actions, ok := policy[role][res]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == act {
			return true
		}
	}
	return false
}
