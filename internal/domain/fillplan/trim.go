package fillplan

// trim quita empaques ya asignados mientras alguna región supere el MOS objetivo.
// En cada paso retira, dentro de las regiones excedidas, el empaque de menor contribución
// marginal aproximada como 1/pronóstico (desempate: empaque más grande, luego el primero).
// El granel devuelto queda como no utilizado: no se vuelve a ofrecer al greedy.
func (a *allocation) trim() int {
	removed := 0
	for {
		var over [numRegions]bool
		anyOver := false
		for r := 0; r < numRegions; r++ {
			mos, ok := a.regionMOS(r)
			if ok && mos > a.target+Epsilon {
				over[r] = true
				anyOver = true
			}
		}
		if !anyOver {
			return removed
		}

		pick := -1
		var pickValue float64
		for i := range a.cands {
			c := &a.cands[i]
			if c.units == 0 || !over[c.region] {
				continue
			}
			v := 1 / c.forecast
			switch {
			case pick < 0:
				pick, pickValue = i, v
			case approxEqual(v, pickValue):
				if c.bpp > a.cands[pick].bpp && !approxEqual(c.bpp, a.cands[pick].bpp) {
					pick, pickValue = i, v
				}
			case v < pickValue:
				pick, pickValue = i, v
			}
		}
		if pick < 0 {
			// las regiones excedidas ya partían sobre el objetivo
			return removed
		}
		a.unplace(pick)
		removed++
	}
}
