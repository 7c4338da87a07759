package scenario

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report summarizes one scenario run.
type Report struct {
	Scenario   string
	Steps      int
	Blocks     int
	Rejected   int
	Extrinsics int
	Failures   int
	Checks     int
	Violations int
}

// Passed reports whether every expectation held.
func (r Report) Passed() bool {
	return r.Violations == 0
}

// Format renders the report for tag.
func (r Report) Format(tag language.Tag) string {
	p := message.NewPrinter(tag)
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	return p.Sprintf("%s %s: %d blocks executed, %d rejected, %d extrinsics (%d failed), %d/%d checks passed",
		status, r.Scenario, r.Blocks, r.Rejected, r.Extrinsics, r.Failures, r.Checks-r.Violations, r.Checks)
}
