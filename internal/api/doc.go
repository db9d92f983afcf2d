// Package api holds the contracts shared between drover packages.
//
// It defines the service metadata and configuration snapshot types exchanged
// with the service directory, the two narrow collaborator interfaces the rest
// of the module depends on (ServiceLister and Registrar), and the typed errors
// surfaced to callers:
//
//   - ValidationError: a request rejected before any work started
//   - NotFoundError: an unknown migration task id or service name
//   - RegistrationError: a failure reported by the register/unregister collaborator
//
// The package does not import any other internal package so it can be used
// from everywhere without creating cycles.
package api
