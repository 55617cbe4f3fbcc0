// Package resolver fills the gaps in a declared topology. It applies a fixed,
// ordered list of implication rules exactly once, adding the services,
// integrations, and integration endpoints that the declared integrations
// depend on so the renderer never meets an integration without its service.
package resolver
