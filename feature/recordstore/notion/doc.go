// Package notion stores datasets as Notion databases and records as pages.
//
// Requests go through resty with bearer auth and the Notion-Version header.
// Rate limited calls (HTTP 429) are retried by the transport; other failures
// are returned to the caller unchanged.
package notion
