// Package text implements the text service. It receives the text of a review and
// forwards it to the compose-review service with a pooled client, retrying transport
// faults on fresh connections.
package text
