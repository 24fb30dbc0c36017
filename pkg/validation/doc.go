/*
Package validation implements the calculator's validation engine.

Rules are plain predicates over numbers (CheckMinimum, CheckMaximum,
VerifyNumber, AllValuesNotZero, SumOfValuesNotZero). Validators wrap them
into functions that return the violated rule flags for a field reading or
for a whole InputSet, and Compose merges several of them without stopping at
the first failure. An Engine evaluates the ordered validators configured for
a mode against an immutable snapshot and reports every violation.
*/
package validation
