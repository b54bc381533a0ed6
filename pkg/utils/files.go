package utils

import (
	"path/filepath"
	"strings"
)

// Stdio is the path that names standard input or output.
const Stdio = "-"

// GetPathInfo returns the absolute path of relPath and its directory.
func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// OutputPath replaces the extension of inPath with ext, next to the input.
// Standard input maps to standard output.
func OutputPath(inPath, ext string) (string, error) {
	if inPath == Stdio {
		return Stdio, nil
	}
	fullPath, parentDir, err := GetPathInfo(inPath)
	if err != nil {
		return "", err
	}
	base := filepath.Base(fullPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(parentDir, base+ext), nil
}
