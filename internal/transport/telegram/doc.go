// Package telegram implements the chat transport against the Telegram
// Bot API: long-poll update retrieval, outbound message delivery, and
// submitted file downloads.
package telegram
