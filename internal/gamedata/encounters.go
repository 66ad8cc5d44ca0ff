package gamedata

// EncounterDef describes one enemy group that can be met in the field.
type EncounterDef struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Enemies []string `json:"enemies"` // Enemy IDs, in menu order; repeats allowed
	Weight  int      `json:"weight"`  // Relative frequency (higher = more common)
}

// EncountersFile represents the structure of encounters.json.
type EncountersFile struct {
	Encounters []EncounterDef `json:"encounters"`
}

// LoadEncounters loads encounter definitions from the embedded encounters.json file.
func LoadEncounters() ([]EncounterDef, error) {
	file, err := Load[EncountersFile]("encounters.json")
	if err != nil {
		return nil, err
	}
	return file.Encounters, nil
}
