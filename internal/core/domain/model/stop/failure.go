package stop

// Failure reasons recorded when a delivery attempt fails. The critical subset
// raises an incident report as a side effect of the failure transition.
const (
	FailureDamagedPackage   = "damaged_package"
	FailureLostPackage      = "lost_package"
	FailureWrongAddress     = "wrong_address"
	FailureRefusedDangerous = "refused_dangerous"
	FailureAccident         = "accident"
	FailureTheft            = "theft"

	FailureCustomerNotHome = "customer_not_home"
	FailureAccessDenied    = "access_denied"
)

func criticalFailureReasons() map[string]struct{} {
	return map[string]struct{}{
		FailureDamagedPackage:   {},
		FailureLostPackage:      {},
		FailureWrongAddress:     {},
		FailureRefusedDangerous: {},
		FailureAccident:         {},
		FailureTheft:            {},
	}
}

// IsCriticalFailureReason reports whether a failure reason must raise an
// incident report.
func IsCriticalFailureReason(reason string) bool {
	_, ok := criticalFailureReasons()[reason]
	return ok
}
