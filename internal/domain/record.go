package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ReadingRecord is a persisted reading as a loosely typed key-value map.
type ReadingRecord map[string]any

// ContaminantRecord is persisted contaminant reference data.
type ContaminantRecord map[string]any

// UtilityRecord is a persisted water utility.
type UtilityRecord map[string]any

// Reading record keys.
const (
	KeyYear                = "year"
	KeyOrigin              = "origin"
	KeyContaminant         = "contaminant"
	KeyUnits               = "units"
	KeyMax                 = "max"
	KeyMin                 = "min"
	KeyAnnualAverage       = "annual_avg"
	KeyLRAA                = "lraa"
	KeyRAA                 = "raa"
	KeyNinetiethPercentile = "ninetieth_perc"
	KeyViolation           = "violation"
	KeySampleCount         = "sample_num"
)

// Contaminant record keys.
const (
	KeyName            = "name"
	KeyAltNames        = "alt_names"
	KeyStandard        = "standard"
	KeyCategory        = "type"
	KeyMCLG            = "mclg"
	KeyMCL             = "mcl"
	KeyActivatedCarbon = "AC"
	KeyReverseOsmosis  = "RO"
	KeyIonExchange     = "Ion"
	KeyRisk            = "risk"
	KeySource          = "source"
	KeyRemedy          = "rul"
	KeyEffects         = "effects"
)

// Utility record keys.
const (
	KeyPWSID        = "pwsid"
	KeyStreet       = "street"
	KeyCityStateZip = "city_state_zip"
	KeySupply       = "supply"
	KeyTreatment    = "treatment"
	KeyTerritory    = "territory"
	KeyLastUpdated  = "last_updated"
	KeyPDF          = "pdf"
	KeyPublish      = "publish"
)

// ParseReadingRecord validates a reading record. Blank, null, and NaN
// statistics become nil. Units are normalized but not validated; an unknown
// unit surfaces later as ErrUnitConversion.
func ParseReadingRecord(rec ReadingRecord) (Reading, error) {
	p := parser{rec: rec}
	r := Reading{
		Year:                           p.requiredInt(KeyYear),
		Origin:                         p.requiredString(KeyOrigin),
		ContaminantName:                p.requiredString(KeyContaminant),
		Unit:                           NormalizeUnit(p.optionalString(KeyUnits)),
		Max:                            p.optionalFloat(KeyMax),
		Min:                            p.optionalFloat(KeyMin),
		AnnualAverage:                  p.optionalFloat(KeyAnnualAverage),
		LocationalRunningAnnualAverage: p.optionalFloat(KeyLRAA),
		RunningAnnualAverage:           p.optionalFloat(KeyRAA),
		NinetiethPercentile:            p.optionalFloat(KeyNinetiethPercentile),
		Violation:                      p.optionalInt(KeyViolation),
		SampleCount:                    p.optionalInt(KeySampleCount),
	}
	if p.err != nil {
		return Reading{}, fmt.Errorf("parse reading: %w", p.err)
	}
	return r, nil
}

// ParseContaminantRecord validates contaminant reference data. A missing
// standard or unit is kept as-is and rejected later by the stage that needs it.
func ParseContaminantRecord(rec ContaminantRecord) (Contaminant, error) {
	p := parser{rec: rec}
	c := Contaminant{
		Name:       p.requiredString(KeyName),
		AltNames:   p.stringList(KeyAltNames, ","),
		Standard:   ParseStandardKind(p.optionalString(KeyStandard)),
		Category:   p.optionalString(KeyCategory),
		Unit:       NormalizeUnit(p.optionalString(KeyUnits)),
		HealthGoal: p.optionalFloat(KeyMCLG),
		LegalLimit: p.optionalFloat(KeyMCL),
		Filtration: Filtration{
			ReverseOsmosis:  p.flag(KeyReverseOsmosis),
			ActivatedCarbon: p.flag(KeyActivatedCarbon),
			IonExchange:     p.flag(KeyIonExchange),
		},
		Risk:    p.optionalString(KeyRisk),
		Source:  p.optionalString(KeySource),
		Remedy:  p.optionalString(KeyRemedy),
		Effects: p.optionalString(KeyEffects),
	}
	if p.err != nil {
		return Contaminant{}, fmt.Errorf("parse contaminant: %w", p.err)
	}
	return c, nil
}

// ParseUtilityRecord validates a water utility record.
func ParseUtilityRecord(rec UtilityRecord) (WaterUtility, error) {
	p := parser{rec: rec}
	u := WaterUtility{
		Name:         p.requiredString(KeyName),
		PWSID:        p.requiredString(KeyPWSID),
		Street:       p.optionalString(KeyStreet),
		CityStateZip: p.optionalString(KeyCityStateZip),
		Supply:       p.optionalString(KeySupply),
		Treatment:    p.optionalString(KeyTreatment),
		Territory:    p.stringList(KeyTerritory, ";"),
		LastUpdated:  p.requiredInt(KeyLastUpdated),
		PDF:          p.optionalString(KeyPDF),
		Publish:      p.optionalString(KeyPublish),
	}
	if p.err != nil {
		return WaterUtility{}, fmt.Errorf("parse utility: %w", p.err)
	}
	return u, nil
}

// Record converts the reading back to its persisted form.
func (r Reading) Record() ReadingRecord {
	return ReadingRecord{
		KeyYear:                r.Year,
		KeyOrigin:              r.Origin,
		KeyContaminant:         r.ContaminantName,
		KeyUnits:               string(r.Unit),
		KeyMax:                 floatOrNil(r.Max),
		KeyMin:                 floatOrNil(r.Min),
		KeyAnnualAverage:       floatOrNil(r.AnnualAverage),
		KeyLRAA:                floatOrNil(r.LocationalRunningAnnualAverage),
		KeyRAA:                 floatOrNil(r.RunningAnnualAverage),
		KeyNinetiethPercentile: floatOrNil(r.NinetiethPercentile),
		KeyViolation:           intOrNil(r.Violation),
		KeySampleCount:         intOrNil(r.SampleCount),
	}
}

// Record converts the contaminant back to its persisted form.
func (c Contaminant) Record() ContaminantRecord {
	return ContaminantRecord{
		KeyName:            c.Name,
		KeyAltNames:        c.AltNames,
		KeyStandard:        string(c.Standard),
		KeyCategory:        c.Category,
		KeyUnits:           string(c.Unit),
		KeyMCLG:            floatOrNil(c.HealthGoal),
		KeyMCL:             floatOrNil(c.LegalLimit),
		KeyReverseOsmosis:  c.Filtration.ReverseOsmosis,
		KeyActivatedCarbon: c.Filtration.ActivatedCarbon,
		KeyIonExchange:     c.Filtration.IonExchange,
		KeyRisk:            c.Risk,
		KeySource:          c.Source,
		KeyRemedy:          c.Remedy,
		KeyEffects:         c.Effects,
	}
}

// Record converts the utility back to its persisted form.
func (u WaterUtility) Record() UtilityRecord {
	return UtilityRecord{
		KeyName:         u.Name,
		KeyPWSID:        u.PWSID,
		KeyStreet:       u.Street,
		KeyCityStateZip: u.CityStateZip,
		KeySupply:       u.Supply,
		KeyTreatment:    u.Treatment,
		KeyTerritory:    u.Territory,
		KeyLastUpdated:  u.LastUpdated,
		KeyPDF:          u.PDF,
		KeyPublish:      u.Publish,
	}
}

var errMissing = errors.New("missing")

// parser reads typed fields from a record, keeping the first error.
type parser struct {
	rec map[string]any
	err error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: field %q: %v", ErrMalformedRecord, key, err)
	}
}

func (p *parser) value(key string) (any, bool) {
	v, ok := p.rec[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func (p *parser) requiredString(key string) string {
	v, ok := p.value(key)
	if !ok {
		p.fail(key, errMissing)
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		p.fail(key, err)
	}
	return strings.TrimSpace(s)
}

func (p *parser) optionalString(key string) string {
	v, ok := p.value(key)
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		p.fail(key, err)
	}
	return strings.TrimSpace(s)
}

func (p *parser) requiredInt(key string) int {
	v, ok := p.value(key)
	if !ok {
		p.fail(key, errMissing)
		return 0
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		p.fail(key, err)
	}
	return n
}

func (p *parser) optionalInt(key string) *int {
	v, ok := p.value(key)
	if !ok {
		return nil
	}
	if f, isFloat := v.(float64); isFloat && math.IsNaN(f) {
		return nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		p.fail(key, err)
		return nil
	}
	return &n
}

func (p *parser) optionalFloat(key string) *float64 {
	v, ok := p.value(key)
	if !ok {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		p.fail(key, err)
		return nil
	}
	if math.IsNaN(f) {
		return nil
	}
	if math.IsInf(f, 0) {
		p.fail(key, fmt.Errorf("non-finite value %v", f))
		return nil
	}
	return &f
}

func (p *parser) flag(key string) bool {
	v, ok := p.value(key)
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		p.fail(key, err)
	}
	return b
}

// stringList accepts a list or a string of items joined by sep.
func (p *parser) stringList(key, sep string) []string {
	v, ok := p.value(key)
	if !ok {
		return nil
	}
	var items []string
	if s, isStr := v.(string); isStr {
		items = strings.Split(s, sep)
	} else {
		list, err := cast.ToStringSliceE(v)
		if err != nil {
			p.fail(key, err)
			return nil
		}
		items = list
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
