// Package resilience provides retry and rate-limiting primitives used by the
// outbound HTTP collaborators (exchange, market, webhook). The execution
// engine itself never retries: a node failure aborts the run, and any retry
// policy lives inside the collaborator that talks to the network.
package resilience
