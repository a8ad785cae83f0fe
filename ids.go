package corevm

import "github.com/google/uuid"

// newObjectID mints a process-wide unique identity for Extension-Objects
// and VM instances. Diagnostics printed to a shared error port from
// multiple VMs (§5) use these to disambiguate otherwise-identical class
// names and callstacks.
func newObjectID() string {
	return uuid.NewString()
}
