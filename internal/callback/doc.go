// Package callback maps short opaque tokens to classification and delete
// actions. Inline keyboards cap callback payload size well below what a
// (class, document id, storage ref) triple needs, so prompts carry only a
// token and the full action is resolved from durable storage on answer.
package callback
