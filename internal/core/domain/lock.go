package domain

// StoreLockKey guards the store as a whole. Installs hold it shared, collection holds it exclusive.
const StoreLockKey = "store"

// EnvLockKey returns the lock key of an environment.
func EnvLockKey(name string) string {
	return "env:" + name
}

// PackageLockKey returns the lock key of a store slot.
func PackageLockKey(id PackageID) string {
	return "pkg:" + id.String()
}
