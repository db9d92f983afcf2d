// Package services provides the service directory drover migrates against.
//
// Directory is a thread-safe, in-memory stand-in for a discovery backend. It
// lists services with their status (api.ServiceLister) and performs the two
// operations a migration needs (api.Registrar):
//
//	dir := services.NewDirectory()
//	_ = dir.Seed(store, store.SourceConfig())
//	_ = dir.Unregister("billing-service")
//	_ = dir.RegisterUnderConfig([]string{"billing-service"}, target)
//
// Faults can be injected per operation and service so that dry runs exercise
// the orchestrator's failure and rollback paths:
//
//	_ = dir.InjectFault(api.OpRegister, "legacy-service", services.ErrInjectedFault)
package services
