// Package domain models drinking-water quality data published in municipal
// Consumer Confidence Reports (CCR) and ranks the contaminants found in them.
//
// # Data Source
//
// Each public water system (PWS) publishes a yearly CCR listing every regulated
// contaminant it sampled. Utilities, contaminant reference data, and individual
// readings are persisted as loosely typed key-value records (see [ReadingRecord],
// [ContaminantRecord], [UtilityRecord]) and parsed into typed entities at the
// boundary. A record that fails to parse is quarantined and never reaches the
// ranking code.
//
// # Units
//
// Concentrations are reported in one of three units, related by exact powers
// of 1000:
//
//	ppt  parts per trillion
//	ppb  parts per billion   (1 ppb = 1000 ppt)
//	ppm  parts per million   (1 ppm = 1000 ppb)
//
// A reading may be reported in a different unit than its contaminant's
// reference unit. [Calibrate] rescales the reading's maximum into the reference
// unit before any comparison against a health goal.
//
// # Standards
//
// EPA standards fall into two kinds:
//
//	Primary    enforceable, health-based. Carries a health goal (MCLG) and
//	           usually a legal limit (MCL).
//	Secondary  aesthetic only (TDS, Hardness, pH). No health goal.
//
// Unknown goals and limits are represented as nil, never as NaN. A present
// zero health goal is a real zero-tolerance policy.
//
// # Severity
//
// Primary findings are ranked by a single linear exceedance factor:
//
//	goal == 0        → +Inf (any detectable trace exceeds a zero-tolerance goal)
//	max unavailable  → ninetieth_percentile / goal − 1
//	otherwise        → max / goal − 1
//
// A factor of 0 means exactly at goal, negative means under goal. See
// [SeverityFactor] and [BuildRanking].
//
// # Skipped Readings
//
// Batch operations ([Classify], [BuildRanking], [BuildIndex]) never fail on a
// single bad reading. The reading is excluded and recorded in [Diagnostics]
// with a [Reason] so callers can count and report it.
package domain
