package bridge

// Wire types for the bridge WebAPI. The request lists the variables to read
// with zero placeholder values; the response echoes the same shape with
// values filled in. Absent lists decode to nil.

type numVar struct {
	Var   string  `json:"var"`
	Value float64 `json:"value"`
}

type strVar struct {
	Var   string `json:"var"`
	Value string `json:"value"`
}

type envelope struct {
	GetVars       []numVar `json:"getvars"`
	GetStringVars []strVar `json:"getstringvars"`
}

func newEnvelope(v Vars) envelope {
	return envelope{
		GetVars: []numVar{
			{Var: v.Altitude},
			{Var: v.Pressure},
			{Var: v.Bug},
		},
		GetStringVars: []strVar{
			{Var: v.Title},
		},
	}
}

// numAt reads slot i of the numeric reply, defaulting to 0 when the bridge
// returned fewer entries than requested.
func (e envelope) numAt(i int) float64 {
	if i >= len(e.GetVars) {
		return 0
	}

	return e.GetVars[i].Value
}
