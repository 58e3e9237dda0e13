package main

import (
	"fmt"
	"os"
)

func validateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config file path is required")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("cannot access config file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path is a directory, expected a file: %s", path)
	}

	return nil
}
