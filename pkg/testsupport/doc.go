// Package testsupport provides controllable collaborators for form tests: a
// validator whose runs settle only when the test says so, a submit handler
// that blocks until released, and helpers that wait for form state.
package testsupport
