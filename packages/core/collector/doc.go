// Package collector accumulates records into per-test runs.
//
// A Collector holds at most one active Run. Records arriving while no test
// is active belong to the suite: those seen before a test are prepended to
// it, those seen after the last test are returned by EndSuite as the
// "after all" hook run.
//
// Network exchanges are opened with Run.Open and appended to the run only
// once they resolve or fail. Exchanges still pending when the run ends are
// recorded as incomplete errors.
package collector
