// Package testsupport provides shared helpers for package tests: temp-dir
// configs, store lifecycles, and fake transport/blob collaborators.
package testsupport
