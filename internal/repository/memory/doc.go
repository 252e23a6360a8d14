// Package memory holds in-process implementations of the repository
// interfaces and of access.Membership. They back tests and STORE_DRIVER=memory
// for local runs; state is lost on restart.
package memory
