package character

// Recorder receives counters for the absorption and digestion pipelines.
// *observability.Metrics satisfies it.
type Recorder interface {
	// UnitAbsorbed is called once per damage unit that went through the pipeline.
	UnitAbsorbed(damageType string, incoming, remaining float64)
	// ArmorWorn is called with the status label of every armor wear check.
	ArmorWorn(status string)
	ArmorDestroyed()
	// Digested is called with what the guts passed on to the body.
	Digested(kcal int, waterML int64)
}

type nopRecorder struct{}

func (nopRecorder) UnitAbsorbed(string, float64, float64) {}
func (nopRecorder) ArmorWorn(string)                      {}
func (nopRecorder) ArmorDestroyed()                       {}
func (nopRecorder) Digested(int, int64)                   {}
