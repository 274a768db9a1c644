// Package ownership implements the structural ownership check for storage
// object ids. Objects are namespaced by the owning uid in the key itself
// ("users/<uid>/..."), so cross-user access is impossible as long as every
// read and delete goes through this check first.
package ownership

import "strings"

// FolderRoot is the top-level storage folder all user objects live under.
const FolderRoot = "users"

// Folder returns the per-user destination folder for uploads.
func Folder(uid string) string {
	return FolderRoot + "/" + uid
}

// Owns reports whether objectID is namespaced under uid's folder.
//
// The check is strict and case-sensitive: an empty or path-like uid never
// owns anything, the object must have at least one segment below the user
// folder, and ids containing empty, "." or ".." segments are rejected so a
// crafted id cannot escape the namespace.
func Owns(uid, objectID string) bool {
	if uid == "" || strings.ContainsAny(uid, "/\\") {
		return false
	}

	prefix := Folder(uid) + "/"
	if !strings.HasPrefix(objectID, prefix) {
		return false
	}
	if len(objectID) == len(prefix) {
		return false
	}

	for _, seg := range strings.Split(objectID, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}

	return true
}
