// Package axis computes the electrical heart axis from two limb leads using
// the hexaxial reference system (lead I at 0°, lead III at +120°).
package axis
