package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// verifyOutput checks that a repaired file exists and is not empty
func verifyOutput(dest string) error {
	info, err := os.Stat(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s is missing", ErrVerification, dest)
	}
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrVerification, dest, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrVerification, dest)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrVerification, dest)
	}
	return nil
}
