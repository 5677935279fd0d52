package constraint

import (
	"gonum.org/v1/gonum/floats"

	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
	"cellpotts/pkg/stats"
)

// PersistenceName is the registered type of Persistence.
const PersistenceName = "Persistence"

const defaultDeltaT = 10

func init() {
	Register(PersistenceName, func(p Params) (cpm.Constraint, error) {
		lambda, err := p.floats(PersistenceName, "LAMBDA_DIR")
		if err != nil {
			return nil, err
		}
		persist, err := p.floats(PersistenceName, "PERSIST")
		if err != nil {
			return nil, err
		}
		var deltaT []int
		if _, ok := p["DELTA_T"]; ok {
			if deltaT, err = p.ints(PersistenceName, "DELTA_T"); err != nil {
				return nil, err
			}
		}
		return NewPersistence(lambda, persist, deltaT)
	})
}

// Persistence makes cells keep moving in a preferred direction. Every step
// the direction is blended with the displacement of the centroid over the
// last DELTA_T steps; PERSIST weighs the old direction.
type Persistence struct {
	lambda  []float64
	persist []float64
	deltaT  []int

	dirs    map[cpm.CellID][]float64
	history map[cpm.CellID][][]float64
}

// NewPersistence builds the constraint. A nil deltaT uses ten steps for
// every kind.
func NewPersistence(lambda, persist []float64, deltaT []int) (*Persistence, error) {
	if len(persist) != len(lambda) {
		return nil, paramErr(PersistenceName, "PERSIST", "has %d entries, LAMBDA_DIR has %d", len(persist), len(lambda))
	}
	if err := nonNegative(PersistenceName, "LAMBDA_DIR", lambda); err != nil {
		return nil, err
	}
	for k, p := range persist {
		if p < 0 || p > 1 {
			return nil, paramErr(PersistenceName, "PERSIST", "entry %d is %v, want [0, 1]", k, p)
		}
	}
	if deltaT == nil {
		deltaT = make([]int, len(lambda))
		for k := range deltaT {
			deltaT[k] = defaultDeltaT
		}
	}
	if len(deltaT) != len(lambda) {
		return nil, paramErr(PersistenceName, "DELTA_T", "has %d entries, LAMBDA_DIR has %d", len(deltaT), len(lambda))
	}
	for k, d := range deltaT {
		if d < 1 {
			return nil, paramErr(PersistenceName, "DELTA_T", "entry %d is %d, want at least 1", k, d)
		}
	}
	return &Persistence{
		lambda:  lambda,
		persist: persist,
		deltaT:  deltaT,
		dirs:    make(map[cpm.CellID][]float64),
		history: make(map[cpm.CellID][][]float64),
	}, nil
}

func (c *Persistence) Name() string               { return PersistenceName }
func (c *Persistence) Capability() cpm.Capability { return cpm.Soft }

func (c *Persistence) Validate(v cpm.View) error {
	return perKind(PersistenceName, "LAMBDA_DIR", len(c.lambda), v.Kinds())
}

// Direction returns the unit preferred direction of id, if it has one yet.
func (c *Persistence) Direction(id cpm.CellID) ([]float64, bool) {
	d, ok := c.dirs[id]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), d...), true
}

// SetDirection overrides the preferred direction of id. d is normalised.
func (c *Persistence) SetDirection(id cpm.CellID, d []float64) {
	d = append([]float64(nil), d...)
	if n := floats.Norm(d, 2); n > 0 {
		floats.Scale(1/n, d)
	}
	c.dirs[id] = d
}

func (c *Persistence) DeltaH(v cpm.View, src, tgt grid.Index, srcID, _ cpm.CellID) float64 {
	if srcID == cpm.Background {
		return 0
	}
	dir, ok := c.dirs[srcID]
	if !ok {
		return 0
	}
	l := c.lambda[cpm.KindOrBackground(v, srcID)]
	if l == 0 {
		return 0
	}
	disp := v.Encoding().Displacement(src, tgt)
	dot := 0.0
	for d, x := range dir {
		dot += float64(disp[d]) * x
	}
	return -l * dot
}

// PixelChanged forgets a cell the moment it dies, so a reused id starts
// without a direction or history.
func (c *Persistence) PixelChanged(v cpm.View, _ grid.Index, oldID, _ cpm.CellID) {
	if oldID == cpm.Background {
		return
	}
	if _, alive := v.VolumeOf(oldID); !alive {
		delete(c.dirs, oldID)
		delete(c.history, oldID)
	}
}

func (c *Persistence) StepComplete(v cpm.View) {
	enc := v.Encoding()
	centroids := stats.CachedCentroidsWithTorusCorrection(v)
	for _, id := range v.CellIDs() {
		k := cpm.KindOrBackground(v, id)
		centroid, placed := centroids[id]
		if c.lambda[k] == 0 || !placed {
			continue
		}
		if _, ok := c.dirs[id]; !ok {
			c.dirs[id] = randomDirection(v, enc.Dims())
		}
		h := append(c.history[id], centroid)
		if len(h) <= c.deltaT[k] {
			c.history[id] = h
			continue
		}
		oldest := h[0]
		h = h[1:]
		c.history[id] = h

		dx := stats.DisplacementOf(enc, oldest, h[len(h)-1])
		n := floats.Norm(dx, 2)
		if n == 0 {
			continue
		}
		floats.Scale((1-c.persist[k])/n, dx)
		floats.AddScaled(dx, c.persist[k], c.dirs[id])
		if n = floats.Norm(dx, 2); n > 0 {
			floats.Scale(1/n, dx)
			c.dirs[id] = dx
		}
	}
}

func randomDirection(v cpm.View, dims int) []float64 {
	d := make([]float64, dims)
	for {
		for k := range d {
			d[k] = v.RNG().NormFloat64()
		}
		if n := floats.Norm(d, 2); n > 0 {
			floats.Scale(1/n, d)
			return d
		}
	}
}
