// Package flow defines the per-user intake domain model: document
// classifications, the user flow state machine, and the pure state
// computation applied after every document mutation.
package flow
