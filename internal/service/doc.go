// Package service defines the monitored service groups and the results
// produced by probing them. A Group is one named service with a single entry
// proxy and an ordered list of backend instances; a Report pairs a Group with
// the UP/DOWN outcome of every endpoint, index for index.
package service
