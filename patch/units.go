package patch

import (
	"fmt"

	"github.com/nordsil/libpatch/liberty"
)

// UnitMismatchError aborts a patch run before any mutation happens.
type UnitMismatchError struct {
	Field    string
	Actual   string
	Expected string
}

func (e UnitMismatchError) Error() string {
	return fmt.Sprintf("%s: library is %q, but patch expects %q; manual conversion or a config update is required",
		e.Field, e.Actual, e.Expected)
}

// ValidateUnits checks each declared expectation against the library
// context. Absent expectations are not checked.
func ValidateUnits(context liberty.LibraryContext, expected ExpectedUnits) error {
	checks := []struct {
		field    string
		actual   string
		expected string
	}{
		{"time_unit", context.TimeUnit, expected.TimeUnit},
		{"voltage_unit", context.VoltageUnit, expected.VoltageUnit},
		{"leakage_power_unit", context.LeakagePowerUnit, expected.LeakagePowerUnit},
	}
	for _, check := range checks {
		if check.expected == "" {
			continue
		}
		if check.actual != check.expected {
			return UnitMismatchError{Field: check.field, Actual: check.actual, Expected: check.expected}
		}
	}
	return nil
}
