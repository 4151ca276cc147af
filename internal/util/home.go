package util

import "os"

var userHomeDir = os.UserHomeDir

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := userHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
