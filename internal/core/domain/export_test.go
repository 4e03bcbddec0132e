package domain

// BaseDirWith exposes baseDirWith for testing.
var BaseDirWith = baseDirWith
