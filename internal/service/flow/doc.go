// Package flow implements email flow and flow step management.
//
// Flows are ordered email sequences referenced by campaigns as
// enrollment-target metadata. Step numbers are strictly increasing within a
// flow. Step content is Liquid-templated; rendering is delegated to the
// injected Renderer (internal/mailing).
package flow
