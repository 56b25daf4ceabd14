// Package healthcheck implements the probe engine behind the status page.
// It issues one bounded-timeout HTTP GET per endpoint, classifies the outcome
// as UP (status 200) or DOWN (anything else, including transport failures and
// timeouts), and fans the probes of a sweep out concurrently while keeping
// every result aligned with the position of the endpoint it describes.
//
// No probe error ever reaches the caller. Faults are reduced to DOWN and are
// only visible through debug logs and the optional Observer.
package healthcheck
