// Package metrics holds the session affect state: the multi-dimensional
// vector every downstream decision (phase, voice, playbook, ritual) is
// derived from.
package metrics

// #region imports
import "math"

// #endregion

// #region dimensions

// Dimension names a single vector field. The string values double as
// snapshot JSON keys and as delta-map keys from the extractor.
type Dimension string

const (
	DimTrust       Dimension = "trust"
	DimClarity     Dimension = "clarity"
	DimPain        Dimension = "pain"
	DimDrift       Dimension = "drift"
	DimChaos       Dimension = "chaos"
	DimEcho        Dimension = "echo"
	DimSilenceMass Dimension = "silence_mass"
	DimRhythm      Dimension = "rhythm"
	DimInterrupt   Dimension = "interrupt"
	DimCtxSwitch   Dimension = "ctx_switch"
)

// #endregion

// #region vector

// Vector is the mutable affect state for one session. All fields live in
// [0,1] except Rhythm, which lives in [0,100]. MirrorSync is derived
// from Trust, Clarity and Drift and is recomputed after every mutation
// rather than stored independently.
type Vector struct {
	Trust       float64 `json:"trust"`
	Clarity     float64 `json:"clarity"`
	Pain        float64 `json:"pain"`
	Drift       float64 `json:"drift"`
	Chaos       float64 `json:"chaos"`
	Echo        float64 `json:"echo"`
	SilenceMass float64 `json:"silence_mass"`
	MirrorSync  float64 `json:"mirror_sync"`
	Rhythm      float64 `json:"rhythm"`
	Interrupt   float64 `json:"interrupt"`
	CtxSwitch   float64 `json:"ctx_switch"`
}

// Defaults returns the neutral session baseline. It is also the state
// PHOENIX resets to.
func Defaults() Vector {
	v := Vector{
		Trust:       0.75,
		Clarity:     0.7,
		Pain:        0.1,
		Drift:       0.1,
		Chaos:       0.2,
		Echo:        0.2,
		SilenceMass: 0.1,
		Rhythm:      60,
		Interrupt:   0,
		CtxSwitch:   0,
	}
	v.Normalize()
	return v
}

// #endregion

// #region deltas

// Deltas is a sparse per-dimension change set. Dimensions absent from
// the map keep their prior value: no signal means no regression toward
// baseline.
type Deltas map[Dimension]float64

// Apply merges d into the vector, then re-clamps every field and
// recomputes the derived ones. NaN and Inf deltas are dropped.
func (v *Vector) Apply(d Deltas) {
	for dim, delta := range d {
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			continue
		}
		switch dim {
		case DimTrust:
			v.Trust += delta
		case DimClarity:
			v.Clarity += delta
		case DimPain:
			v.Pain += delta
		case DimDrift:
			v.Drift += delta
		case DimChaos:
			v.Chaos += delta
		case DimEcho:
			v.Echo += delta
		case DimSilenceMass:
			v.SilenceMass += delta
		case DimRhythm:
			v.Rhythm += delta
		case DimInterrupt:
			v.Interrupt += delta
		case DimCtxSwitch:
			v.CtxSwitch += delta
		}
	}
	v.Normalize()
}

// #endregion

// #region normalize

// Normalize clamps every field to its domain and recomputes the derived
// fields. It must run after every mutation, including snapshot loads.
func (v *Vector) Normalize() {
	v.Trust = clamp01(v.Trust)
	v.Clarity = clamp01(v.Clarity)
	v.Pain = clamp01(v.Pain)
	v.Drift = clamp01(v.Drift)
	v.Chaos = clamp01(v.Chaos)
	v.Echo = clamp01(v.Echo)
	v.SilenceMass = clamp01(v.SilenceMass)
	v.Rhythm = clampRange(v.Rhythm, 0, 100)
	v.Interrupt = clamp01(v.Interrupt)
	v.CtxSwitch = clamp01(v.CtxSwitch)

	// Derived: how closely the companion tracks the user right now.
	// High trust and clarity pull it up, drift pulls it down.
	v.MirrorSync = clamp01((v.Trust+v.Clarity)/2 * (1 - v.Drift))
}

// TrustSeal is a derived confidence value used by response policy. It is
// never stored; callers recompute it from the live fields.
func (v Vector) TrustSeal() float64 {
	return clamp01(0.7*v.Trust + 0.3*v.MirrorSync)
}

// #endregion

// #region helpers

func clamp01(x float64) float64 {
	return clampRange(x, 0, 1)
}

func clampRange(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// #endregion
