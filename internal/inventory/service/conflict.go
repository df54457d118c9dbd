package service

import "fmt"

// SugerenciaBodega is one warehouse's share of a suggested distribution.
type SugerenciaBodega struct {
	IDBodega         int64  `json:"id_bodega"`
	Nombre           string `json:"nombre"`
	Disponible       int    `json:"disponible"`
	CantidadSugerida int    `json:"cantidad_sugerida"`
}

// CapacityConflictError is returned when the target warehouse cannot hold the
// requested quantity but sibling warehouses in the branch can absorb the
// excess. The payload is advisory input for the distributed-reception path.
type CapacityConflictError struct {
	BodegaPrincipal    SugerenciaBodega   `json:"bodega_principal"`
	BodegasSecundarias []SugerenciaBodega `json:"bodegas_secundarias"`
	Mensaje            string             `json:"mensaje"`
}

func (e *CapacityConflictError) Error() string {
	return fmt.Sprintf("capacidad insuficiente en bodega %s: disponible %d",
		e.BodegaPrincipal.Nombre, e.BodegaPrincipal.Disponible)
}

// BranchDeficitError is returned when the whole branch, primary plus every
// operational sibling, lacks room for the requested quantity.
type BranchDeficitError struct {
	CapacidadDisponibleSucursal int    `json:"capacidad_disponible_sucursal"`
	CapacidadRequerida          int    `json:"capacidad_requerida"`
	Deficit                     int    `json:"deficit"`
	Mensaje                     string `json:"mensaje"`
}

func (e *BranchDeficitError) Error() string {
	return fmt.Sprintf("capacidad insuficiente en la sucursal: déficit de %d unidades", e.Deficit)
}

// RevalidationConflictError is returned by distributed reception when a
// warehouse's availability dropped below its assigned quantity between the
// client's proposal and the commit attempt.
type RevalidationConflictError struct {
	IDBodega   int64  `json:"id_bodega"`
	Bodega     string `json:"bodega"`
	Disponible int    `json:"disponible"`
	Requerido  int    `json:"requerido"`
}

func (e *RevalidationConflictError) Error() string {
	return fmt.Sprintf("la capacidad de la bodega %s cambió: disponible %d, requerido %d",
		e.Bodega, e.Disponible, e.Requerido)
}
