// Package topology models an environment declaration: which managed services
// exist, which integrations each of them takes part in, and the global
// integration endpoints exposed for scraping. It also owns the loaders that turn
// YAML or TOML declarations into a Topology and the structural validator that
// runs before resolution.
package topology
