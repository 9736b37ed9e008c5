// Package telemetry writes simulation and survey records as CSV.
package telemetry

// HitRecord is one damage unit after the absorption pipeline.
type HitRecord struct {
	Turn           int64   `csv:"turn"`
	Character      string  `csv:"character"`
	BodyPart       string  `csv:"body_part"`
	DamageType     string  `csv:"damage_type"`
	Incoming       float64 `csv:"incoming"`
	Remaining      float64 `csv:"remaining"`
	Negated        bool    `csv:"negated"`
	ArmorDestroyed bool    `csv:"armor_destroyed"`
	Remains        int     `csv:"remains"`
	PowerKJ        float64 `csv:"power_kj"`
}

// DigestionRecord is one digestion pass.
type DigestionRecord struct {
	Turn         int64   `csv:"turn"`
	Character    string  `csv:"character"`
	KCal         int     `csv:"kcal"`
	WaterML      int64   `csv:"water_ml"`
	StomachML    int64   `csv:"stomach_ml"`
	StomachKCal  int     `csv:"stomach_kcal"`
	GutsML       int64   `csv:"guts_ml"`
	GutsKCal     int     `csv:"guts_kcal"`
	AbsorbedKCal int     `csv:"absorbed_kcal"`
	PowerKJ      float64 `csv:"power_kj"`
}

// SurveyRecord summarizes spawn degradation of one item definition.
type SurveyRecord struct {
	Item       string  `csv:"item"`
	Damage     int     `csv:"damage"`
	Increments int     `csv:"degrade_increments"`
	Samples    int     `csv:"samples"`
	Mean       float64 `csv:"mean"`
	StdDev     float64 `csv:"stddev"`
	Min        float64 `csv:"min"`
	Median     float64 `csv:"median"`
	Max        float64 `csv:"max"`
}
