package fillplan

import "strings"

// Epsilon tolerancia numérica de todas las comparaciones del motor.
const Epsilon = 1e-9

// Regiones lógicas de planificación. El orden de Regions es el orden de salida del plan.
const (
	RegionPrimary   = "IK" // Inside Kerala
	RegionSecondary = "OK" // Outside Kerala
)

// Bodegas físicas que alimentan las regiones.
const (
	DepotPrimary   = "HO_IK" // bodega principal de IK
	DepotOverflow  = "KKD"   // bodega auxiliar (Kozhikode): su stock suma a IK
	DepotSecondary = "HO_OK" // bodega de OK
)

const (
	numRegions = 2
	numDepots  = 3
)

// Regions regiones en orden fijo (primaria, secundaria).
var Regions = [numRegions]string{RegionPrimary, RegionSecondary}

// Depots bodegas en el orden en que se muestran.
var Depots = [numDepots]string{DepotPrimary, DepotOverflow, DepotSecondary}

// depotRegion regla de negocio: el stock de IK es HO_IK + KKD; el de OK es solo HO_OK.
// El pronóstico de una región, en cambio, sale únicamente de las filas consolidadas por región.
var depotRegion = map[string]int{
	DepotPrimary:   0,
	DepotOverflow:  0,
	DepotSecondary: 1,
}

// NormalizeCode recorta y pasa a mayúsculas un código de región o bodega.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// RegionForDepot devuelve la región a la que suma el stock de la bodega.
func RegionForDepot(depot string) (string, bool) {
	idx, ok := depotRegion[NormalizeCode(depot)]
	if !ok {
		return "", false
	}
	return Regions[idx], true
}

func regionIndex(region string) int {
	switch NormalizeCode(region) {
	case RegionPrimary:
		return 0
	case RegionSecondary:
		return 1
	}
	return -1
}

func depotIndex(depot string) int {
	d := NormalizeCode(depot)
	for i, code := range Depots {
		if code == d {
			return i
		}
	}
	return -1
}
