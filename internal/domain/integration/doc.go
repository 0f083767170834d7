// Package integration contains the CRM integration bounded context.
//
// Key concepts:
//   - CrmClient: port for the external CRM order API
//   - StatusMapper: translation between local and CRM status vocabularies
//   - ProductMapping: links local product references to CRM catalog items
//
// Ports are defined here in the domain layer; the CRM adapter lives in
// the infrastructure layer.
package integration
