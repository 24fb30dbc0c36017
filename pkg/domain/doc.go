/*
Package domain contains the core models of the heart axis calculator.

It defines the raw field readings, the immutable calculator settings, the
validation vocabulary and the computed outcome. This package is kept free of
I/O and persistence, following Hexagonal Architecture principles.

# Key Entities

  - Value: A raw reading of one form field (missing, finite or non-finite).
  - InputSet: The six fields of a calculation (two sums, two wave pairs).
  - Settings: Process-wide bounds and defaults (NumericBound, WaveBound).
  - ValidationResult: Every rule violated by an InputSet, per field and form-wide.
  - Outcome: What the host should display after a recompute.
  - Session: The persisted record of one calculator session.
*/
package domain
