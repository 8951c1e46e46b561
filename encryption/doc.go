// Package encryption protects exchange API secrets at rest. Configured
// secrets may be stored with an "enc:" prefix; the config loader decrypts
// them with the deployment's master key before handing credentials to the
// exchange factory.
package encryption
