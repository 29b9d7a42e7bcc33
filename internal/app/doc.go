// Package app composes the offer service: it builds the offer registry from
// resolved configuration, selects the mint submitter, wires the claim service
// and its confirmation poller, and owns their lifecycle through the system
// manager. The HTTP layer in httpapi talks only to the services exposed on
// Application; nothing below this package reads process configuration.
package app
