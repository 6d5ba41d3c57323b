package fillplan

import "math"

// candidate par (región, SKU) que puede recibir empaques. Se muta en sitio durante la asignación.
type candidate struct {
	region    int
	sku       int // índice en Metrics.SKUs
	baseStock float64
	forecast  float64
	bpp       float64
	units     int64
}

func (c *candidate) stock() float64 {
	return c.baseStock + float64(c.units)*c.bpp
}

func (c *candidate) mos() float64 {
	return c.stock() / c.forecast
}

// allocation estado mutable de una corrida: arreglo plano de candidatos más agregados por región.
// No se reserva memoria por iteración.
type allocation struct {
	cands          []candidate
	bulk           float64 // granel disponible tras los urgentes
	target         float64
	regionStock    [numRegions]float64
	regionForecast [numRegions]float64
}

// newAllocation arma los candidatos con pronóstico positivo y base por empaque positiva,
// y calcula el MOS objetivo global: (granel + Σ stock) / Σ pronóstico.
func newAllocation(m *Metrics, bulk float64) *allocation {
	a := &allocation{bulk: bulk}
	for i := range m.SKUs {
		s := &m.SKUs[i]
		if s.BasePerPackF <= Epsilon {
			continue
		}
		for r := 0; r < numRegions; r++ {
			rm := s.Regions[r]
			if !rm.HasMOS {
				continue
			}
			a.cands = append(a.cands, candidate{
				region:    r,
				sku:       i,
				baseStock: rm.StockBase,
				forecast:  rm.ForecastBase,
				bpp:       s.BasePerPackF,
			})
		}
	}

	var totalStock, totalForecast float64
	for i := range a.cands {
		totalStock += a.cands[i].baseStock
		totalForecast += a.cands[i].forecast
		a.regionForecast[a.cands[i].region] += a.cands[i].forecast
	}
	a.refreshRegions()
	a.target = TargetMOS(bulk, totalStock, totalForecast)
	return a
}

// TargetMOS MOS que alcanzaría cada región si el granel fuera infinitamente divisible.
func TargetMOS(bulk, totalStock, totalForecast float64) float64 {
	if totalForecast <= Epsilon {
		return 0
	}
	return (bulk + totalStock) / totalForecast
}

func (a *allocation) refreshRegions() {
	a.regionStock = [numRegions]float64{}
	for i := range a.cands {
		a.regionStock[a.cands[i].region] += a.cands[i].stock()
	}
}

func (a *allocation) regionMOS(r int) (float64, bool) {
	if a.regionForecast[r] <= Epsilon {
		return 0, false
	}
	return a.regionStock[r] / a.regionForecast[r], true
}

// used unidades base consumidas, recalculadas desde los empaques enteros.
func (a *allocation) used() float64 {
	var u float64
	for i := range a.cands {
		u += float64(a.cands[i].units) * a.cands[i].bpp
	}
	return u
}

func (a *allocation) remaining() float64 {
	return a.bulk - a.used()
}

// score beneficio marginal por unidad base de poner un empaque más en c.
func (a *allocation) score(c *candidate) float64 {
	gap := a.target - c.mos()
	if gap <= Epsilon {
		return 0
	}
	rmos, _ := a.regionMOS(c.region)
	regionGap := a.target - rmos
	if regionGap <= Epsilon {
		return 0
	}
	// Un empaque nunca recibe crédito por empujar al SKU más allá del objetivo.
	gain := math.Min(gap, c.bpp/c.forecast) / c.bpp
	return gain * regionGap
}

func approxEqual(x, y float64) bool {
	return math.Abs(x-y) <= Epsilon*math.Max(1, math.Max(math.Abs(x), math.Abs(y)))
}

// preferred desempate: mayor pronóstico, luego empaque más pequeño; si persiste, gana el primero.
func preferred(c, best *candidate) bool {
	if !approxEqual(c.forecast, best.forecast) {
		return c.forecast > best.forecast
	}
	if !approxEqual(c.bpp, best.bpp) {
		return c.bpp < best.bpp
	}
	return false
}

func (a *allocation) place(i int) {
	a.cands[i].units++
	a.refreshRegions()
}

func (a *allocation) unplace(i int) {
	a.cands[i].units--
	a.refreshRegions()
}

// greedy asigna de a un empaque al candidato de mayor puntaje hasta agotar el granel
// o hasta que ningún candidato tenga puntaje positivo. Devuelve los empaques colocados.
func (a *allocation) greedy() int {
	placed := 0
	for {
		rem := a.remaining()
		best, bestScore := -1, 0.0
		for i := range a.cands {
			c := &a.cands[i]
			if c.bpp > rem+Epsilon {
				continue
			}
			s := a.score(c)
			if s <= 0 {
				continue
			}
			switch {
			case best < 0:
				best, bestScore = i, s
			case approxEqual(s, bestScore):
				if preferred(c, &a.cands[best]) {
					best, bestScore = i, s
				}
			case s > bestScore:
				best, bestScore = i, s
			}
		}
		if best < 0 {
			return placed
		}
		a.place(best)
		placed++
	}
}

// spill con sobrepaso permitido, reparte el granel sobrante entre los SKUs de menor MOS
// mientras quepa algún empaque entero.
func (a *allocation) spill() int {
	placed := 0
	for {
		rem := a.remaining()
		best := -1
		var bestMOS float64
		for i := range a.cands {
			c := &a.cands[i]
			if c.bpp > rem+Epsilon {
				continue
			}
			mos := c.mos()
			switch {
			case best < 0:
				best, bestMOS = i, mos
			case approxEqual(mos, bestMOS):
				if preferred(c, &a.cands[best]) {
					best, bestMOS = i, mos
				}
			case mos < bestMOS:
				best, bestMOS = i, mos
			}
		}
		if best < 0 {
			return placed
		}
		a.place(best)
		placed++
	}
}
