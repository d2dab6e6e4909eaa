// Package planner turns file listings and a user instruction into a JSON move plan
// by prompting a hosted LLM and extracting the plan from its free-text reply.
package planner

// FileDescriptor describes one file the desktop client wants organized.
// Timestamps are Unix epoch milliseconds, as reported by the client.
type FileDescriptor struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	SizeBytes  *int64 `json:"size_bytes,omitempty"`
	CreatedAt  *int64 `json:"created_at,omitempty"`
	ModifiedAt *int64 `json:"modified_at,omitempty"`
}

// MovePlanEntry is one proposed move in a plan. Source should equal the path of
// an input FileDescriptor; Destination is a relative "FolderName/filename" path
// using forward slashes only.
type MovePlanEntry struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}
