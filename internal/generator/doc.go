// Package generator turns a free-text marketing objective into a segment
// draft and a campaign content skeleton.
//
// The preferred path is the injected TextGenerator (an AI collaborator,
// internal/agent). When the collaborator reports it is not configured, a
// deterministic rule-based classifier takes over; any other collaborator
// failure surfaces to the caller unchanged.
package generator
